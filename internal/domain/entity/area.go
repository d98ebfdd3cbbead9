package entity

// Estados de cultivo de una zona de siembra.
const (
	AreaStatusActive     = "Đang canh tác"
	AreaStatusHarvesting = "Đang thu hoạch"
	AreaStatusFallow     = "Đất nghỉ"
	AreaStatusPending    = "Chờ duyệt"
)

// Niveles de prioridad.
const (
	PriorityFirst   = "Ưu tiên 1"
	PrioritySecond  = "Ưu tiên 2"
	PriorityThird   = "Ưu tiên 3"
	PriorityUnrated = "Chưa xếp hạng"
)

// Estados de acercamiento (SOP pasos 1 y 2).
const (
	ApproachNotMet     = "Chưa gặp"
	ApproachMet        = "Đã gặp"
	ApproachMemoSigned = "Đã ký biên bản"
	ApproachFailed     = "Không liên kết được"
)

// Estados del trámite legal (SOP paso 8).
const (
	LegalPending   = "Chưa xử lý"
	LegalSigning   = "Trình ký"
	LegalSubmitted = "Nộp hồ sơ"
	LegalApproved  = "Đã duyệt"
)

// Farmer hogar productor dentro de una zona.
type Farmer struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	AreaSize float64 `json:"areaSize"` // ha
	Notes    string  `json:"notes,omitempty"`
}

// AreaDocument documento adjunto a la ficha de la zona.
type AreaDocument struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UploadDate string `json:"uploadDate"`
	URL        string `json:"url,omitempty"`
}

// PlantingArea zona de siembra (vùng trồng) o cooperativa.
type PlantingArea struct {
	ID             string         `json:"id"`
	Code           string         `json:"code"` // VT-001
	Name           string         `json:"name"`
	CropType       string         `json:"cropType"`
	Hectares       float64        `json:"hectares"`
	Location       string         `json:"location"`
	Owner          string         `json:"owner"`
	Phone          string         `json:"phone,omitempty"`
	Farmers        []Farmer       `json:"farmers"`
	Status         string         `json:"status"`
	EstimatedYield float64        `json:"estimatedYield"` // tấn
	Comments       string         `json:"comments,omitempty"`
	LinkageStatus  string         `json:"linkageStatus"`
	Documents      []AreaDocument `json:"documents"`
	Priority       string         `json:"priority"`

	AppointmentDate         string   `json:"appointmentDate,omitempty"`
	AppointmentNote         string   `json:"appointmentNote,omitempty"`
	AppointmentParticipants []string `json:"appointmentParticipants,omitempty"`
	ApproachStatus          string   `json:"approachStatus,omitempty"`

	LegalStatus       string `json:"legalStatus,omitempty"`
	AuthorizationDate string `json:"authorizationDate,omitempty"`
	LegalNotes        string `json:"legalNotes,omitempty"`
}

func (a PlantingArea) RecordID() string { return a.ID }
