package entity

// Estados válidos de Employee (texto tal cual se guarda en la hoja).
const (
	EmployeeStatusActive   = "Đang làm việc"
	EmployeeStatusResigned = "Đã nghỉ việc"
)

// Employee representa un empleado. También es la identidad de la sesión:
// Role se compara contra Role.Name de la tabla de cargos.
type Employee struct {
	ID           string `json:"id"`
	Code         string `json:"code"` // NV001
	Name         string `json:"name"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Password     string `json:"password,omitempty"` // solo de escritura; nunca se persiste localmente
	Email        string `json:"email,omitempty"`
	Status       string `json:"status"`
	JoinDate     string `json:"joinDate"`
	DOB          string `json:"dob,omitempty"`
	IdentityCard string `json:"identityCard,omitempty"` // CCCD/CMND
	Address      string `json:"address,omitempty"`
}

func (e Employee) RecordID() string { return e.ID }

// Active informa si el empleado sigue trabajando (puede iniciar sesión).
func (e Employee) Active() bool {
	return e.Status != EmployeeStatusResigned
}

// WithoutPassword devuelve una copia sin la contraseña.
func (e Employee) WithoutPassword() Employee {
	e.Password = ""
	return e
}
