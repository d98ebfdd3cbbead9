package entity

// BackupVersion versión del formato de copia de seguridad.
const BackupVersion = "1.0"

// Dataset es el contenido completo de la aplicación devuelto por un único fetch.
type Dataset struct {
	Areas           []PlantingArea        `json:"areas"`
	Purchases       []PurchaseTransaction `json:"purchases"`
	Surveys         []SurveyRecord        `json:"surveys"`
	Contracts       []PurchaseContract    `json:"contracts"`
	FarmingLogs     []FarmingActivity     `json:"farmingLogs"`
	Employees       []Employee            `json:"employees"`
	LinkageStatuses []LinkageStatusOption `json:"linkageStatuses"`
	Folders         []Folder              `json:"folders"`
	Files           []SystemFile          `json:"files"`
	SystemSettings  *SystemSettings       `json:"systemSettings"`
}

// BackupData copia de seguridad completa (versión + marca de tiempo + Dataset).
type BackupData struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Dataset
}
