package models

// Reference - связанная запись (клиент, лид или пользователь) для выпадающих списков.
type Reference struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
