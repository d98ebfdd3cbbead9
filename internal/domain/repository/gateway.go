package repository

import (
	"context"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// EntityGateway es la frontera remota para un tipo de entidad. Cada llamada es un único
// round trip. Add y Update devuelven el registro tal como quedó guardado (con ID del servidor).
type EntityGateway[T entity.Record] interface {
	Add(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Gateway define el puerto hacia el backend remoto (Google Sheet u otro).
// La implementación vive en infrastructure.
type Gateway interface {
	// FetchAllData trae todas las colecciones y la configuración en una sola llamada.
	// Es todo o nada: ante cualquier fallo devuelve error y ningún dato.
	FetchAllData(ctx context.Context) (*entity.Dataset, error)
	// Authenticate verifica código y contraseña. Devuelve domain.ErrUnauthorized si no coinciden.
	Authenticate(ctx context.Context, code, password string) (*entity.Employee, error)

	Areas() EntityGateway[entity.PlantingArea]
	Purchases() EntityGateway[entity.PurchaseTransaction]
	Surveys() EntityGateway[entity.SurveyRecord]
	Contracts() EntityGateway[entity.PurchaseContract]
	FarmingLogs() EntityGateway[entity.FarmingActivity]
	Employees() EntityGateway[entity.Employee]
	LinkageStatuses() EntityGateway[entity.LinkageStatusOption]
	Folders() EntityGateway[entity.Folder]
	Files() EntityGateway[entity.SystemFile]

	// UploadFile guarda el contenido y registra el archivo; borrar una carpeta borra en
	// cascada sus subcarpetas y archivos del lado remoto.
	UploadFile(ctx context.Context, upload entity.FileUpload) (entity.SystemFile, error)
	UpdateSystemSettings(ctx context.Context, settings entity.SystemSettings) (*entity.SystemSettings, error)
	// RestoreData reemplaza todo el estado remoto por la copia (idempotente).
	RestoreData(ctx context.Context, backup entity.BackupData) error
}

// FileContentReader lo implementan los backends que guardan el contenido de los archivos
// (PostgreSQL, memoria). Con Google Sheets el archivo vive en Drive y se usa su URL.
type FileContentReader interface {
	FileContent(ctx context.Context, id string) ([]byte, string, error)
}

// FileContentURL ruta del facade HTTP que sirve el contenido de un archivo.
func FileContentURL(id string) string {
	return "/api/files/" + id + "/content"
}
