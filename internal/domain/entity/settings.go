package entity

// LinkageStatusOption es una opción configurable de estado de vinculación.
type LinkageStatusOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"` // clases CSS, ej. "bg-green-100 text-green-700"
}

func (o LinkageStatusOption) RecordID() string { return o.ID }

// Option es una entrada de los catálogos dinámicos (tipos de actividad, cultivos, calidades).
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CompanyInfo datos de la empresa mostrados en login, sidebar y documentos impresos.
type CompanyInfo struct {
	Name              string `json:"name"`
	InternationalName string `json:"internationalName,omitempty"`
	ShortName         string `json:"shortName,omitempty"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Website           string `json:"website"`
	TaxCode           string `json:"taxCode"`
	Representative    string `json:"representative"`
	LogoURL           string `json:"logoUrl"`
}

// FieldConfig indica qué campos de los formularios son obligatorios.
type FieldConfig struct {
	Area struct {
		Hectares       bool `json:"hectares"`
		Owner          bool `json:"owner"`
		Location       bool `json:"location"`
		EstimatedYield bool `json:"estimatedYield"`
	} `json:"area"`
	Farming struct {
		Cost       bool `json:"cost"`
		ActualArea bool `json:"actualArea"`
		Technician bool `json:"technician"`
	} `json:"farming"`
	Purchase struct {
		Quality bool `json:"quality"`
		Price   bool `json:"price"`
	} `json:"purchase"`
}

// SystemSettings configuración general; incluye la tabla de cargos usada para resolver permisos.
type SystemSettings struct {
	MemoTemplate     string      `json:"memoTemplate"`
	ContractTemplate string      `json:"contractTemplate,omitempty"`
	InvoiceTemplate  string      `json:"invoiceTemplate,omitempty"`
	ActivityTypes    []Option    `json:"activityTypes"`
	CropTypes        []Option    `json:"cropTypes"`
	ProductQualities []Option    `json:"productQualities"`
	CompanyInfo      CompanyInfo `json:"companyInfo"`
	Roles            []Role      `json:"roles"`
	FieldConfig      FieldConfig `json:"fieldConfig"`
}

// Clone devuelve una copia que no comparte slices con el original.
func (s *SystemSettings) Clone() *SystemSettings {
	if s == nil {
		return nil
	}
	out := *s
	out.ActivityTypes = append([]Option(nil), s.ActivityTypes...)
	out.CropTypes = append([]Option(nil), s.CropTypes...)
	out.ProductQualities = append([]Option(nil), s.ProductQualities...)
	out.Roles = append([]Role(nil), s.Roles...)
	return &out
}

// DefaultSystemSettings configuración de un backend recién creado. La tabla de cargos
// está vacía: solo el administrador reservado tiene permisos hasta que se configure.
func DefaultSystemSettings() *SystemSettings {
	return &SystemSettings{
		MemoTemplate: "BIÊN BẢN GHI NHỚ HỢP TÁC",
		ActivityTypes: []Option{
			{ID: "bon-phan", Label: "Bón phân"},
			{ID: "phun-thuoc", Label: "Phun thuốc"},
			{ID: "tuoi-nuoc", Label: "Tưới nước"},
			{ID: "thu-hoach", Label: "Thu hoạch"},
		},
		CropTypes: []Option{
			{ID: "sau-rieng", Label: "Sầu riêng"},
			{ID: "xoai", Label: "Xoài"},
		},
		ProductQualities: []Option{
			{ID: "loai-1", Label: "Loại 1"},
			{ID: "loai-2", Label: "Loại 2"},
			{ID: "loai-3", Label: "Loại 3"},
		},
		CompanyInfo: CompanyInfo{
			Name:      "CÔNG TY TNHH HOA CƯƠNG",
			ShortName: "Hoa Cương",
		},
		Roles: []Role{},
	}
}
