package models

import (
	"slices"
	"strings"
	"time"
)

type (
	VehicleType       string // Тип транспортного средства
	NegotiationStatus string // Статус переговоров
	TenderStage       string // Стадия тендера
	TenderStatus      string // Статус тендера
	PocRequired       string // Требуется ли POC
	ApprovalStatus    string // Статус согласования
	Department        string // Отдел продаж
)

const (
	Passenger VehicleType = "passenger"
	Truck     VehicleType = "truck"
	Lorry     VehicleType = "lorry"
	Bus       VehicleType = "bus"

	NegotiationSuccess NegotiationStatus = "success"
	NegotiationFailed  NegotiationStatus = "failed"
	NegotiationPending NegotiationStatus = "pending"

	StageApproved    TenderStage = "approved"
	StageLost        TenderStage = "lost"
	StageNegotiation TenderStage = "negotiation"
	StageRevision    TenderStage = "revision"

	StatusSuccess    TenderStatus = "success"
	StatusFailed     TenderStatus = "failed"
	StatusInProgress TenderStatus = "in_progress"

	PocYes PocRequired = "yes"
	PocNo  PocRequired = "no"

	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalPending  ApprovalStatus = "pending"

	FleetSales         Department = "fleet_sales"
	PublicTransport    Department = "public_transport"
	CorporateSales     Department = "corporate_sales"
	EducationTransport Department = "education_transport"
	HeavyEquipment     Department = "heavy_equipment"
	AviationSales      Department = "aviation_sales"
)

// NewTenderNo - заглушка номера тендера до присвоения из последовательности.
const NewTenderNo = "New"

var (
	vehicleTypes        = []VehicleType{Passenger, Truck, Lorry, Bus}
	negotiationStatuses = []NegotiationStatus{NegotiationSuccess, NegotiationFailed, NegotiationPending}
	tenderStages        = []TenderStage{StageApproved, StageLost, StageNegotiation, StageRevision}
	tenderStatuses      = []TenderStatus{StatusSuccess, StatusFailed, StatusInProgress}
	pocValues           = []PocRequired{PocYes, PocNo}
	approvalStatuses    = []ApprovalStatus{ApprovalApproved, ApprovalRejected, ApprovalPending}
	departments         = []Department{FleetSales, PublicTransport, CorporateSales, EducationTransport, HeavyEquipment, AviationSales}
)

func (v VehicleType) Valid() bool       { return slices.Contains(vehicleTypes, v) }
func (v NegotiationStatus) Valid() bool { return slices.Contains(negotiationStatuses, v) }
func (v TenderStage) Valid() bool       { return slices.Contains(tenderStages, v) }
func (v TenderStatus) Valid() bool      { return slices.Contains(tenderStatuses, v) }
func (v PocRequired) Valid() bool       { return slices.Contains(pocValues, v) }
func (v ApprovalStatus) Valid() bool    { return slices.Contains(approvalStatuses, v) }
func (v Department) Valid() bool        { return slices.Contains(departments, v) }

// Tender представляет модель тендера вместе с отображаемыми именами связанных записей.
type Tender struct {
	ID                int64             `json:"id"`
	TenderNo          string            `json:"tenderNo"`
	Name              string            `json:"name"`
	PartnerID         *int64            `json:"partnerId"`
	LeadID            *int64            `json:"leadId"`
	UserID            *int64            `json:"userId"`
	VehicleType       VehicleType       `json:"vehicleType"`
	Model             string            `json:"model"`
	NegotiationStatus NegotiationStatus `json:"negotiationStatus"`
	TenderStage       TenderStage       `json:"tenderStage"`
	TenderStatus      TenderStatus      `json:"tenderStatus"`
	PocRequired       PocRequired       `json:"pocRequired"`
	ApprovalStatus    ApprovalStatus    `json:"approvalStatus"`
	SubmissionDate    *time.Time        `json:"submissionDate"`
	Department        Department        `json:"department"`
	Remarks           string            `json:"remarks"`
	CreateDate        time.Time         `json:"createDate"`
	WriteDate         time.Time         `json:"writeDate"`

	PartnerName string `json:"-"`
	LeadName    string `json:"-"`
	UserName    string `json:"-"`
}

// TenderRequest представляет структуру запроса для создания тендера.
type TenderRequest struct {
	TenderNo          string            `json:"tenderNo"`
	Name              string            `json:"name"`
	PartnerID         *int64            `json:"partnerId"`
	LeadID            *int64            `json:"leadId"`
	UserID            *int64            `json:"userId"`
	VehicleType       VehicleType       `json:"vehicleType"`
	Model             string            `json:"model"`
	NegotiationStatus NegotiationStatus `json:"negotiationStatus"`
	TenderStage       TenderStage       `json:"tenderStage"`
	TenderStatus      TenderStatus      `json:"tenderStatus"`
	PocRequired       PocRequired       `json:"pocRequired"`
	ApprovalStatus    ApprovalStatus    `json:"approvalStatus"`
	SubmissionDate    string            `json:"submissionDate"`
	Department        Department        `json:"department"`
	Remarks           string            `json:"remarks"`
}

// Actor - пользователь, от имени которого выполняется операция.
type Actor struct {
	UserID *int64
}

// TenderFilter описывает условия отбора для дашборда и экспорта.
type TenderFilter struct {
	Stage  TenderStage
	Search string
}

// NewTenderFilter строит фильтр из параметров запроса.
// Неизвестная стадия (в том числе "all") означает отсутствие фильтра по стадии.
// Некорректные UTF-8 последовательности в поиске отбрасываются.
func NewTenderFilter(filterType, search string) TenderFilter {
	filter := TenderFilter{Search: strings.ToValidUTF8(search, "")}
	if stage := TenderStage(filterType); stage.Valid() {
		filter.Stage = stage
	}
	return filter
}

// TenderItem - отформатированная запись тендера для дашборда.
type TenderItem struct {
	ID                   int64  `json:"id"`
	TenderNo             string `json:"tenderNo"`
	TenderTitle          string `json:"tenderTitle"`
	CustomerName         string `json:"customerName"`
	LeadNo               string `json:"leadNo"`
	Owner                string `json:"owner"`
	VehicleType          string `json:"vehicleType"`
	VehicleTypeRaw       string `json:"vehicleTypeRaw"`
	Model                string `json:"model"`
	NegotiationStatus    string `json:"negotiationStatus"`
	NegotiationStatusRaw string `json:"negotiationStatusRaw"`
	TenderStage          string `json:"tenderStage"`
	TenderStageRaw       string `json:"tenderStageRaw"`
	TenderStatus         string `json:"tenderStatus"`
	TenderStatusRaw      string `json:"tenderStatusRaw"`
	PocRequired          string `json:"pocRequired"`
	SubmissionDate       string `json:"submissionDate"`
	ApprovalStatus       string `json:"approvalStatus"`
	ApprovalStatusRaw    string `json:"approvalStatusRaw"`
	Department           string `json:"department"`
	UpdatedTime          string `json:"updatedTime"`
	CreatedTime          string `json:"createdTime"`
	Remarks              string `json:"remarks"`
}

// TenderQuery - параметры запроса страницы дашборда.
type TenderQuery struct {
	FilterType string
	Search     string
	Page       int
	Limit      int
}

// TenderPage - страница дашборда и общее количество отфильтрованных тендеров.
type TenderPage struct {
	Tenders []TenderItem `json:"tenders"`
	Total   int          `json:"total"`
}

// ExportRequest - параметры выгрузки тендеров в Excel.
type ExportRequest struct {
	IDs        string
	FilterType string
	Search     string
}
