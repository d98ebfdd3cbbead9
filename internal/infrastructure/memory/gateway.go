// Package memory implementa repository.Gateway en memoria del proceso (demos y tests).
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// Gateway backend en memoria. Guarda las contraseñas como hash bcrypt y nunca las devuelve.
type Gateway struct {
	mu        sync.Mutex
	data      entity.Dataset
	passwords map[string][]byte // employee ID → hash
	contents  map[string]storedFile
	now       func() time.Time

	offline   bool
	failNext  error
	failFetch error
	fetches   int
	mutations int

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

// New crea un backend vacío con la configuración por defecto (sin cargos: el
// administrador reservado obtiene todos los permisos).
func New() *Gateway {
	g := &Gateway{
		passwords: map[string][]byte{},
		contents:  map[string]storedFile{},
		now:       time.Now,
	}
	g.data.SystemSettings = entity.DefaultSystemSettings()

	g.areas = newTable(g, "areas", &g.data.Areas, func(r entity.PlantingArea, id string) entity.PlantingArea { r.ID = id; return r })
	g.purchases = newTable(g, "purchases", &g.data.Purchases, func(r entity.PurchaseTransaction, id string) entity.PurchaseTransaction { r.ID = id; return r })
	g.surveys = newTable(g, "surveys", &g.data.Surveys, func(r entity.SurveyRecord, id string) entity.SurveyRecord { r.ID = id; return r })
	g.contracts = newTable(g, "contracts", &g.data.Contracts, func(r entity.PurchaseContract, id string) entity.PurchaseContract { r.ID = id; return r })
	g.farmingLogs = newTable(g, "farmingLogs", &g.data.FarmingLogs, func(r entity.FarmingActivity, id string) entity.FarmingActivity { r.ID = id; return r })
	g.employees = newTable(g, "employees", &g.data.Employees, func(r entity.Employee, id string) entity.Employee { r.ID = id; return r })
	g.linkageStatuses = newTable(g, "linkageStatuses", &g.data.LinkageStatuses, func(r entity.LinkageStatusOption, id string) entity.LinkageStatusOption { r.ID = id; return r })
	g.folders = newTable(g, "folders", &g.data.Folders, func(r entity.Folder, id string) entity.Folder { r.ID = id; return r })
	g.files = newTable(g, "files", &g.data.Files, func(r entity.SystemFile, id string) entity.SystemFile { r.ID = id; return r })

	g.employees.beforeSave = g.storePasswordLocked
	g.employees.afterDelete = func(id string) { delete(g.passwords, id) }
	g.folders.afterDelete = g.cascadeFolderLocked
	g.files.afterDelete = func(id string) { delete(g.contents, id) }
	return g
}

// SeedEmployee agrega un empleado con contraseña (cuentas iniciales, tests).
func (g *Gateway) SeedEmployee(emp entity.Employee, password string) (entity.Employee, error) {
	emp.Password = password
	if emp.Status == "" {
		emp.Status = entity.EmployeeStatusActive
	}
	return g.employees.Add(context.Background(), emp)
}

// SetOffline simula un backend inalcanzable: todas las llamadas fallan.
func (g *Gateway) SetOffline(offline bool) {
	g.mu.Lock()
	g.offline = offline
	g.mu.Unlock()
}

// FailNext hace fallar la próxima llamada (cualquiera) con err.
func (g *Gateway) FailNext(err error) {
	g.mu.Lock()
	g.failNext = err
	g.mu.Unlock()
}

// FailFetch hace fallar el próximo FetchAllData con err.
func (g *Gateway) FailFetch(err error) {
	g.mu.Lock()
	g.failFetch = err
	g.mu.Unlock()
}

// Fetches número de llamadas a FetchAllData atendidas.
func (g *Gateway) Fetches() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetches
}

// Mutations número de escrituras confirmadas.
func (g *Gateway) Mutations() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mutations
}

type storedFile struct {
	content  []byte
	mimeType string
}

// FileContent contenido subido de un archivo y su tipo MIME.
func (g *Gateway) FileContent(_ context.Context, id string) ([]byte, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f, ok := g.contents[id]
	if !ok {
		return nil, "", fmt.Errorf("%w: contenido de %s", domain.ErrNotFound, id)
	}
	return slices.Clone(f.content), f.mimeType, nil
}

// checkLocked aplica las fallas simuladas.
func (g *Gateway) checkLocked() error {
	if g.offline {
		return fmt.Errorf("%w: backend en memoria fuera de línea", domain.ErrRemoteUnavailable)
	}
	if err := g.failNext; err != nil {
		g.failNext = nil
		return err
	}
	return nil
}

func (g *Gateway) FetchAllData(_ context.Context) (*entity.Dataset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(); err != nil {
		return nil, err
	}
	if err := g.failFetch; err != nil {
		g.failFetch = nil
		return nil, err
	}
	g.fetches++
	out, err := cloneDataset(g.data)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) Authenticate(_ context.Context, code, password string) (*entity.Employee, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(); err != nil {
		return nil, err
	}
	for _, emp := range g.data.Employees {
		if emp.Code != code {
			continue
		}
		hash, ok := g.passwords[emp.ID]
		if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
			break
		}
		out := emp
		return &out, nil
	}
	return nil, domain.ErrUnauthorized
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

func (g *Gateway) UploadFile(_ context.Context, upload entity.FileUpload) (entity.SystemFile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(); err != nil {
		return entity.SystemFile{}, err
	}
	if upload.Name == "" {
		return entity.SystemFile{}, fmt.Errorf("%w: nombre de archivo vacío", domain.ErrInvalidInput)
	}
	if upload.FolderID != nil && !slices.ContainsFunc(g.data.Folders, func(f entity.Folder) bool { return f.ID == *upload.FolderID }) {
		return entity.SystemFile{}, fmt.Errorf("%w: carpeta %s", domain.ErrNotFound, *upload.FolderID)
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
	g.contents[file.ID] = storedFile{content: slices.Clone(upload.Content), mimeType: upload.MimeType}
	g.data.Files = append(g.data.Files, file)
	g.mutations++
	return file, nil
}

func (g *Gateway) UpdateSystemSettings(_ context.Context, settings entity.SystemSettings) (*entity.SystemSettings, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(); err != nil {
		return nil, err
	}
	g.data.SystemSettings = settings.Clone()
	g.mutations++
	return settings.Clone(), nil
}

// RestoreData reemplaza todo el contenido. Las contraseñas incluidas en la copia se
// vuelven a hashear; los empleados sin contraseña conservan la anterior si existía.
func (g *Gateway) RestoreData(_ context.Context, backup entity.BackupData) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(); err != nil {
		return err
	}
	if backup.Version == "" {
		return fmt.Errorf("%w: copia sin versión", domain.ErrInvalidInput)
	}
	restored, err := cloneDataset(backup.Dataset)
	if err != nil {
		return err
	}

	passwords := map[string][]byte{}
	for i, emp := range restored.Employees {
		switch {
		case emp.Password != "":
			hash, err := bcrypt.GenerateFromPassword([]byte(emp.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash contraseña: %w", err)
			}
			passwords[emp.ID] = hash
		case g.passwords[emp.ID] != nil:
			passwords[emp.ID] = g.passwords[emp.ID]
		}
		restored.Employees[i] = emp.WithoutPassword()
	}
	if restored.SystemSettings == nil {
		restored.SystemSettings = entity.DefaultSystemSettings()
	}

	g.data.Areas = nonNil(restored.Areas)
	g.data.Purchases = nonNil(restored.Purchases)
	g.data.Surveys = nonNil(restored.Surveys)
	g.data.Contracts = nonNil(restored.Contracts)
	g.data.FarmingLogs = nonNil(restored.FarmingLogs)
	g.data.Employees = nonNil(restored.Employees)
	g.data.LinkageStatuses = nonNil(restored.LinkageStatuses)
	g.data.Folders = nonNil(restored.Folders)
	g.data.Files = nonNil(restored.Files)
	g.data.SystemSettings = restored.SystemSettings
	g.passwords = passwords
	g.mutations++
	return nil
}

// storePasswordLocked hashea la contraseña recibida y la quita del registro guardado.
// Un Update sin contraseña conserva la anterior.
func (g *Gateway) storePasswordLocked(emp entity.Employee) (entity.Employee, error) {
	// El código identifica al empleado en el login y en la regla de administrador.
	if emp.Code != "" && slices.ContainsFunc(g.data.Employees, func(other entity.Employee) bool {
		return other.ID != emp.ID && other.Code == emp.Code
	}) {
		return emp, fmt.Errorf("%w: código de empleado %s", domain.ErrDuplicate, emp.Code)
	}
	if emp.Password == "" {
		return emp, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(emp.Password), bcrypt.DefaultCost)
	if err != nil {
		return emp, fmt.Errorf("hash contraseña: %w", err)
	}
	g.passwords[emp.ID] = hash
	return emp.WithoutPassword(), nil
}

func (g *Gateway) cascadeFolderLocked(id string) {
	tree := entity.FolderSubtree(g.data.Folders, id)
	g.data.Folders = slices.DeleteFunc(g.data.Folders, func(f entity.Folder) bool { return tree[f.ID] })
	g.data.Files = slices.DeleteFunc(g.data.Files, func(f entity.SystemFile) bool {
		if f.InFolder(tree) {
			delete(g.contents, f.ID)
			return true
		}
		return false
	})
}

// cloneDataset copia profunda vía JSON (los registros tienen slices y punteros anidados).
func cloneDataset(in entity.Dataset) (entity.Dataset, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return entity.Dataset{}, fmt.Errorf("copiar datos: %w", err)
	}
	var out entity.Dataset
	if err := json.Unmarshal(raw, &out); err != nil {
		return entity.Dataset{}, fmt.Errorf("copiar datos: %w", err)
	}
	return out, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
