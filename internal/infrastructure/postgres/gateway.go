// Package postgres implementa repository.Gateway sobre PostgreSQL para instalaciones
// autoalojadas que no usan Google Sheets.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// Gateway backend PostgreSQL: registros JSONB por tipo, configuración singleton y
// contraseñas bcrypt en una tabla aparte.
type Gateway struct {
	pool *pgxpool.Pool
	tx   *TxRunner
	log  zerolog.Logger
	now  func() time.Time

	areas           *table[entity.PlantingArea]
	purchases       *table[entity.PurchaseTransaction]
	surveys         *table[entity.SurveyRecord]
	contracts       *table[entity.PurchaseContract]
	farmingLogs     *table[entity.FarmingActivity]
	employees       *table[entity.Employee]
	linkageStatuses *table[entity.LinkageStatusOption]
	folders         *table[entity.Folder]
	files           *table[entity.SystemFile]
}

var _ repository.Gateway = (*Gateway)(nil)

// NewGateway construye el adaptador con el pool.
func NewGateway(pool *pgxpool.Pool, log zerolog.Logger) *Gateway {
	g := &Gateway{
		pool: pool,
		tx:   NewTxRunner(pool),
		log:  log.With().Str("component", "postgres").Logger(),
		now:  time.Now,
	}
	g.areas = newTable(g, "areas", func(r entity.PlantingArea, id string) entity.PlantingArea { r.ID = id; return r })
	g.purchases = newTable(g, "purchases", func(r entity.PurchaseTransaction, id string) entity.PurchaseTransaction { r.ID = id; return r })
	g.surveys = newTable(g, "surveys", func(r entity.SurveyRecord, id string) entity.SurveyRecord { r.ID = id; return r })
	g.contracts = newTable(g, "contracts", func(r entity.PurchaseContract, id string) entity.PurchaseContract { r.ID = id; return r })
	g.farmingLogs = newTable(g, "farmingLogs", func(r entity.FarmingActivity, id string) entity.FarmingActivity { r.ID = id; return r })
	g.employees = newTable(g, "employees", func(r entity.Employee, id string) entity.Employee { r.ID = id; return r })
	g.linkageStatuses = newTable(g, "linkageStatuses", func(r entity.LinkageStatusOption, id string) entity.LinkageStatusOption { r.ID = id; return r })
	g.folders = newTable(g, "folders", func(r entity.Folder, id string) entity.Folder { r.ID = id; return r })
	g.files = newTable(g, "files", func(r entity.SystemFile, id string) entity.SystemFile { r.ID = id; return r })

	g.employees.beforeSave = storeCredentials
	g.employees.afterDelete = func(ctx context.Context, q querier, id string) error {
		_, err := q.Exec(ctx, `DELETE FROM employee_credentials WHERE employee_id = $1`, id)
		return err
	}
	g.folders.afterDelete = cascadeFolder
	g.files.afterDelete = func(ctx context.Context, q querier, id string) error {
		_, err := q.Exec(ctx, `DELETE FROM file_contents WHERE file_id = $1`, id)
		return err
	}
	return g
}

// FetchAllData lee todas las colecciones en una sola consulta, en orden de inserción.
func (g *Gateway) FetchAllData(ctx context.Context) (*entity.Dataset, error) {
	ds := entity.Dataset{
		Areas:           []entity.PlantingArea{},
		Purchases:       []entity.PurchaseTransaction{},
		Surveys:         []entity.SurveyRecord{},
		Contracts:       []entity.PurchaseContract{},
		FarmingLogs:     []entity.FarmingActivity{},
		Employees:       []entity.Employee{},
		LinkageStatuses: []entity.LinkageStatusOption{},
		Folders:         []entity.Folder{},
		Files:           []entity.SystemFile{},
	}

	rows, err := g.pool.Query(ctx, `SELECT kind, data FROM records ORDER BY kind, position`)
	if err != nil {
		return nil, wrapErr("fetch records", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var raw []byte
		if err := rows.Scan(&kind, &raw); err != nil {
			return nil, wrapErr("scan record", err)
		}
		if err := appendRecord(&ds, kind, raw); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("fetch records", err)
	}

	settings, err := g.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	ds.SystemSettings = settings
	return &ds, nil
}

func appendRecord(ds *entity.Dataset, kind string, raw []byte) error {
	var err error
	switch kind {
	case "areas":
		err = appendJSON(&ds.Areas, raw)
	case "purchases":
		err = appendJSON(&ds.Purchases, raw)
	case "surveys":
		err = appendJSON(&ds.Surveys, raw)
	case "contracts":
		err = appendJSON(&ds.Contracts, raw)
	case "farmingLogs":
		err = appendJSON(&ds.FarmingLogs, raw)
	case "employees":
		err = appendJSON(&ds.Employees, raw)
	case "linkageStatuses":
		err = appendJSON(&ds.LinkageStatuses, raw)
	case "folders":
		err = appendJSON(&ds.Folders, raw)
	case "files":
		err = appendJSON(&ds.Files, raw)
	default:
		return nil // tipos desconocidos (versiones futuras) se ignoran
	}
	if err != nil {
		return fmt.Errorf("%w: registro %s malformado: %w", domain.ErrRemoteUnavailable, kind, err)
	}
	return nil
}

func appendJSON[T any](dst *[]T, raw []byte) error {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}
	*dst = append(*dst, rec)
	return nil
}

func (g *Gateway) loadSettings(ctx context.Context) (*entity.SystemSettings, error) {
	var raw []byte
	err := g.pool.QueryRow(ctx, `SELECT data FROM system_settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.DefaultSystemSettings(), nil
	}
	if err != nil {
		return nil, wrapErr("fetch settings", err)
	}
	var settings entity.SystemSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("%w: configuración malformada: %w", domain.ErrRemoteUnavailable, err)
	}
	return &settings, nil
}

// Authenticate busca el empleado por código y compara el hash bcrypt.
func (g *Gateway) Authenticate(ctx context.Context, code, password string) (*entity.Employee, error) {
	const query = `
	SELECT r.data, c.password_hash
	FROM records r
	JOIN employee_credentials c ON c.employee_id = r.id
	WHERE r.kind = 'employees' AND r.data->>'code' = $1
	ORDER BY r.position
	LIMIT 1`

	var raw []byte
	var hash string
	err := g.pool.QueryRow(ctx, query, code).Scan(&raw, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, wrapErr("authenticate", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	var emp entity.Employee
	if err := json.Unmarshal(raw, &emp); err != nil {
		return nil, fmt.Errorf("%w: empleado malformado: %w", domain.ErrRemoteUnavailable, err)
	}
	out := emp.WithoutPassword()
	return &out, nil
}

func (g *Gateway) Areas() repository.EntityGateway[entity.PlantingArea] { return g.areas }
func (g *Gateway) Purchases() repository.EntityGateway[entity.PurchaseTransaction] { return g.purchases }
func (g *Gateway) Surveys() repository.EntityGateway[entity.SurveyRecord] { return g.surveys }
func (g *Gateway) Contracts() repository.EntityGateway[entity.PurchaseContract] { return g.contracts }
func (g *Gateway) FarmingLogs() repository.EntityGateway[entity.FarmingActivity] { return g.farmingLogs }
func (g *Gateway) Employees() repository.EntityGateway[entity.Employee] { return g.employees }
func (g *Gateway) LinkageStatuses() repository.EntityGateway[entity.LinkageStatusOption] {
	return g.linkageStatuses
}
func (g *Gateway) Folders() repository.EntityGateway[entity.Folder] { return g.folders }
func (g *Gateway) Files() repository.EntityGateway[entity.SystemFile] { return g.files }

// UploadFile guarda el registro y el contenido en la misma transacción.
func (g *Gateway) UploadFile(ctx context.Context, upload entity.FileUpload) (entity.SystemFile, error) {
	if upload.Name == "" {
		return entity.SystemFile{}, fmt.Errorf("%w: nombre de archivo vacío", domain.ErrInvalidInput)
	}
	file := entity.SystemFile{
		ID:         uuid.New().String(),
		Name:       upload.Name,
		FolderID:   upload.FolderID,
		UploadDate: g.now().Format("2006-01-02"),
		Size:       entity.HumanSize(len(upload.Content)),
		Type:       entity.FileKind(upload.Name, upload.MimeType),
	}
	file.URL = repository.FileContentURL(file.ID)

	err := g.tx.Run(ctx, func(q querier) error {
		if upload.FolderID != nil {
			var exists bool
			if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM records WHERE kind = 'folders' AND id = $1)`, *upload.FolderID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: carpeta %s", domain.ErrNotFound, *upload.FolderID)
			}
		}
		if err := insertRecord(ctx, q, "files", file.ID, file); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `INSERT INTO file_contents (file_id, mime_type, content) VALUES ($1, $2, $3)`,
			file.ID, upload.MimeType, upload.Content)
		return err
	})
	if err != nil {
		return entity.SystemFile{}, wrapErr("upload file", err)
	}
	return file, nil
}

// FileContent devuelve el contenido subido y su tipo MIME.
func (g *Gateway) FileContent(ctx context.Context, id string) ([]byte, string, error) {
	var content []byte
	var mime string
	err := g.pool.QueryRow(ctx, `SELECT content, mime_type FROM file_contents WHERE file_id = $1`, id).Scan(&content, &mime)
	if err != nil {
		return nil, "", wrapErr("file content", err)
	}
	return content, mime, nil
}

func (g *Gateway) UpdateSystemSettings(ctx context.Context, settings entity.SystemSettings) (*entity.SystemSettings, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("serializar configuración: %w", err)
	}
	const query = `
	INSERT INTO system_settings (id, data, updated_at) VALUES (1, $1, now())
	ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := g.pool.Exec(ctx, query, raw); err != nil {
		return nil, wrapErr("update settings", err)
	}
	return settings.Clone(), nil
}

// RestoreData reemplaza todo en una transacción. Las contraseñas de la copia se vuelven a
// hashear; los empleados sin contraseña conservan la que tenían.
func (g *Gateway) RestoreData(ctx context.Context, backup entity.BackupData) error {
	if backup.Version == "" {
		return fmt.Errorf("%w: copia sin versión", domain.ErrInvalidInput)
	}
	settings := backup.SystemSettings
	if settings == nil {
		settings = entity.DefaultSystemSettings()
	}
	settingsRaw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serializar configuración: %w", err)
	}

	err = g.tx.Run(ctx, func(q querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM records`); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		if err := queueAll(batch, "areas", backup.Areas); err != nil {
			return err
		}
		if err := queueAll(batch, "purchases", backup.Purchases); err != nil {
			return err
		}
		if err := queueAll(batch, "surveys", backup.Surveys); err != nil {
			return err
		}
		if err := queueAll(batch, "contracts", backup.Contracts); err != nil {
			return err
		}
		if err := queueAll(batch, "farmingLogs", backup.FarmingLogs); err != nil {
			return err
		}
		if err := queueAll(batch, "linkageStatuses", backup.LinkageStatuses); err != nil {
			return err
		}
		if err := queueAll(batch, "folders", backup.Folders); err != nil {
			return err
		}
		if err := queueAll(batch, "files", backup.Files); err != nil {
			return err
		}
		for _, emp := range backup.Employees {
			if emp.Password != "" {
				hash, err := bcrypt.GenerateFromPassword([]byte(emp.Password), bcrypt.DefaultCost)
				if err != nil {
					return fmt.Errorf("hash contraseña: %w", err)
				}
				batch.Queue(`INSERT INTO employee_credentials (employee_id, password_hash) VALUES ($1, $2)
					ON CONFLICT (employee_id) DO UPDATE SET password_hash = EXCLUDED.password_hash`, emp.ID, string(hash))
			}
			if err := queueRecord(batch, "employees", emp.ID, emp.WithoutPassword()); err != nil {
				return err
			}
		}
		batch.Queue(`DELETE FROM employee_credentials WHERE employee_id NOT IN (SELECT id FROM records WHERE kind = 'employees')`)
		batch.Queue(`DELETE FROM file_contents WHERE file_id NOT IN (SELECT id FROM records WHERE kind = 'files')`)
		batch.Queue(`INSERT INTO system_settings (id, data, updated_at) VALUES (1, $1, now())
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, settingsRaw)

		return q.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return wrapErr("restore", err)
	}
	g.log.Info().Str("version", backup.Version).Msg("datos restaurados")
	return nil
}

func queueAll[T entity.Record](batch *pgx.Batch, kind string, items []T) error {
	for _, rec := range items {
		if err := queueRecord(batch, kind, rec.RecordID(), rec); err != nil {
			return err
		}
	}
	return nil
}

func queueRecord(batch *pgx.Batch, kind, id string, rec any) error {
	if id == "" {
		return fmt.Errorf("%w: registro %s sin id", domain.ErrInvalidInput, kind)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serializar %s: %w", kind, err)
	}
	batch.Queue(`INSERT INTO records (kind, id, data) VALUES ($1, $2, $3)`, kind, id, raw)
	return nil
}

// PurchaseTotals suma en SQL los ingresos y kilos de todas las compras.
func (g *Gateway) PurchaseTotals(ctx context.Context) (revenue, volumeKg decimal.Decimal, err error) {
	const query = `
	SELECT
	    COALESCE(SUM((data->>'totalAmount')::numeric), 0) AS revenue,
	    COALESCE(SUM((data->>'quantityKg')::numeric),  0) AS volume
	FROM records
	WHERE kind = 'purchases'`

	if err := g.pool.QueryRow(ctx, query).Scan(&revenue, &volumeKg); err != nil {
		return decimal.Zero, decimal.Zero, wrapErr("purchase totals", err)
	}
	return revenue, volumeKg, nil
}

func storeCredentials(ctx context.Context, q querier, emp entity.Employee) (entity.Employee, error) {
	if emp.Password == "" {
		return emp, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(emp.Password), bcrypt.DefaultCost)
	if err != nil {
		return emp, fmt.Errorf("hash contraseña: %w", err)
	}
	const query = `
	INSERT INTO employee_credentials (employee_id, password_hash) VALUES ($1, $2)
	ON CONFLICT (employee_id) DO UPDATE SET password_hash = EXCLUDED.password_hash`
	if _, err := q.Exec(ctx, query, emp.ID, string(hash)); err != nil {
		return emp, err
	}
	return emp.WithoutPassword(), nil
}

// cascadeFolder borra las subcarpetas (a cualquier profundidad) y los archivos que contenían.
func cascadeFolder(ctx context.Context, q querier, id string) error {
	const query = `
	WITH RECURSIVE tree(id) AS (
	    SELECT $1::text
	    UNION
	    SELECT r.id FROM records r JOIN tree t ON r.data->>'parentId' = t.id
	    WHERE r.kind = 'folders'
	),
	removed_files AS (
	    DELETE FROM records
	    WHERE kind = 'files' AND data->>'folderId' IN (SELECT id FROM tree)
	    RETURNING id
	),
	removed_contents AS (
	    DELETE FROM file_contents WHERE file_id IN (SELECT id FROM removed_files)
	)
	DELETE FROM records WHERE kind = 'folders' AND id IN (SELECT id FROM tree)`
	_, err := q.Exec(ctx, query, id)
	return err
}
