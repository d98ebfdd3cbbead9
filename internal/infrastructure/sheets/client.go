// Package sheets implementa repository.Gateway contra la aplicación web de Google Apps
// Script que guarda los datos en una Google Sheet.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// Acciones del protocolo.
const (
	ActionFetchAll       = "fetchAllData"
	ActionLogin          = "login"
	ActionAdd            = "add"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionUploadFile     = "uploadFile"
	ActionUpdateSettings = "updateSystemSettings"
	ActionRestore        = "restoreData"
)

// Códigos de error del script que tienen significado propio.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
)

const (
	statusSuccess = "success"

	// El fetch completo puede traer varios MB (plantillas, historial).
	maxResponseBytes = 32 << 20
)

// Request cuerpo de cada POST al script.
type Request struct {
	Action  string `json:"action"`
	Entity  string `json:"entity,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Response sobre de respuesta del script.
type Response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client adaptador HTTP del script. Cada operación es un único POST.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	log        zerolog.Logger

	areas           *entityClient[entity.PlantingArea]
	purchases       *entityClient[entity.PurchaseTransaction]
	surveys         *entityClient[entity.SurveyRecord]
	contracts       *entityClient[entity.PurchaseContract]
	farmingLogs     *entityClient[entity.FarmingActivity]
	employees       *entityClient[entity.Employee]
	linkageStatuses *entityClient[entity.LinkageStatusOption]
	folders         *entityClient[entity.Folder]
	files           *entityClient[entity.SystemFile]
}

var _ repository.Gateway = (*Client)(nil)

// New construye el cliente. token es opcional (despliegues protegidos con secreto).
// El timeout aplica a cada llamada además del contexto del llamador.
func New(url, token string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "sheets").Logger(),
	}
	c.areas = &entityClient[entity.PlantingArea]{c: c, entity: "areas"}
	c.purchases = &entityClient[entity.PurchaseTransaction]{c: c, entity: "purchases"}
	c.surveys = &entityClient[entity.SurveyRecord]{c: c, entity: "surveys"}
	c.contracts = &entityClient[entity.PurchaseContract]{c: c, entity: "contracts"}
	c.farmingLogs = &entityClient[entity.FarmingActivity]{c: c, entity: "farmingLogs"}
	c.employees = &entityClient[entity.Employee]{c: c, entity: "employees"}
	c.linkageStatuses = &entityClient[entity.LinkageStatusOption]{c: c, entity: "linkageStatuses"}
	c.folders = &entityClient[entity.Folder]{c: c, entity: "folders"}
	c.files = &entityClient[entity.SystemFile]{c: c, entity: "files"}
	return c
}

// call envía la acción y decodifica data en out (si out no es nil).
func (c *Client) call(ctx context.Context, action, kind string, payload, out any) error {
	if c.url == "" {
		return fmt.Errorf("%w: SHEETS_URL no configurado", domain.ErrRemoteUnavailable)
	}
	body, err := json.Marshal(Request{Action: action, Entity: kind, Payload: payload, Token: c.token})
	if err != nil {
		return fmt.Errorf("sheets: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheets: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s cancelado: %w", domain.ErrRemoteUnavailable, action, ctx.Err())
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrRemoteUnavailable, action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: leer respuesta de %s: %w", domain.ErrRemoteUnavailable, action, err)
	}
	c.log.Debug().
		Str("action", action).
		Str("entity", kind).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("sheets call")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s HTTP %d", domain.ErrRemoteUnavailable, action, resp.StatusCode)
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: %s respuesta malformada: %w", domain.ErrRemoteUnavailable, action, err)
	}
	if envelope.Status != statusSuccess {
		return envelopeError(action, envelope)
	}
	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: %s sin datos", domain.ErrRemoteUnavailable, action)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %s datos malformados: %w", domain.ErrRemoteUnavailable, action, err)
	}
	return nil
}

func envelopeError(action string, env Response) error {
	msg := env.Message
	if msg == "" {
		msg = "error desconocido"
	}
	switch env.Code {
	case CodeUnauthorized:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case CodeNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrRemoteUnavailable, action, msg)
	}
}

func (c *Client) FetchAllData(ctx context.Context) (*entity.Dataset, error) {
	var data entity.Dataset
	if err := c.call(ctx, ActionFetchAll, "", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) Authenticate(ctx context.Context, code, password string) (*entity.Employee, error) {
	var emp entity.Employee
	payload := map[string]string{"code": code, "password": password}
	if err := c.call(ctx, ActionLogin, "employees", payload, &emp); err != nil {
		return nil, err
	}
	if emp.ID == "" && emp.Code == "" {
		return nil, domain.ErrUnauthorized
	}
	out := emp.WithoutPassword()
	return &out, nil
}

func (c *Client) Areas() repository.EntityGateway[entity.PlantingArea] { return c.areas }
func (c *Client) Purchases() repository.EntityGateway[entity.PurchaseTransaction] { return c.purchases }
func (c *Client) Surveys() repository.EntityGateway[entity.SurveyRecord] { return c.surveys }
func (c *Client) Contracts() repository.EntityGateway[entity.PurchaseContract] { return c.contracts }
func (c *Client) FarmingLogs() repository.EntityGateway[entity.FarmingActivity] { return c.farmingLogs }
func (c *Client) Employees() repository.EntityGateway[entity.Employee] { return c.employees }
func (c *Client) LinkageStatuses() repository.EntityGateway[entity.LinkageStatusOption] {
	return c.linkageStatuses
}
func (c *Client) Folders() repository.EntityGateway[entity.Folder] { return c.folders }
func (c *Client) Files() repository.EntityGateway[entity.SystemFile] { return c.files }

// UploadFile el contenido viaja en base64 (codificación JSON de []byte).
func (c *Client) UploadFile(ctx context.Context, upload entity.FileUpload) (entity.SystemFile, error) {
	var file entity.SystemFile
	if err := c.call(ctx, ActionUploadFile, "files", upload, &file); err != nil {
		return entity.SystemFile{}, err
	}
	return file, nil
}

func (c *Client) UpdateSystemSettings(ctx context.Context, settings entity.SystemSettings) (*entity.SystemSettings, error) {
	var saved entity.SystemSettings
	if err := c.call(ctx, ActionUpdateSettings, "systemSettings", settings, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) RestoreData(ctx context.Context, backup entity.BackupData) error {
	return c.call(ctx, ActionRestore, "", backup, nil)
}

// entityClient operaciones CRUD de un tipo de entidad (hoja).
type entityClient[T entity.Record] struct {
	c      *Client
	entity string
}

func (e *entityClient[T]) Add(ctx context.Context, rec T) (T, error) {
	var out T
	if err := e.c.call(ctx, ActionAdd, e.entity, rec, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (e *entityClient[T]) Update(ctx context.Context, rec T) (T, error) {
	var out T
	if err := e.c.call(ctx, ActionUpdate, e.entity, rec, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (e *entityClient[T]) Delete(ctx context.Context, id string) error {
	return e.c.call(ctx, ActionDelete, e.entity, map[string]string{"id": id}, nil)
}
