package entity

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Folder carpeta del repositorio documental. ParentID nil = raíz.
type Folder struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parentId"`
	CreatedAt string  `json:"createdAt"`
}

func (f Folder) RecordID() string { return f.ID }

// SystemFile archivo del repositorio documental. FolderID nil = raíz.
type SystemFile struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	FolderID   *string `json:"folderId"`
	UploadDate string  `json:"uploadDate"`
	Size       string  `json:"size"`
	Type       string  `json:"type"` // pdf, doc, img...
	URL        string  `json:"url,omitempty"`
}

func (f SystemFile) RecordID() string { return f.ID }

// InFolder informa si el archivo está dentro de alguna de las carpetas dadas.
func (f SystemFile) InFolder(ids map[string]bool) bool {
	return f.FolderID != nil && ids[*f.FolderID]
}

// FileUpload contenido de un archivo a subir. Content viaja en base64 dentro del JSON.
type FileUpload struct {
	Name     string  `json:"name"`
	FolderID *string `json:"folderId"`
	MimeType string  `json:"mimeType"`
	Content  []byte  `json:"content"`
}

// FolderSubtree devuelve el ID raíz y los IDs de todas sus subcarpetas (a cualquier profundidad).
func FolderSubtree(folders []Folder, rootID string) map[string]bool {
	tree := map[string]bool{rootID: true}
	for changed := true; changed; {
		changed = false
		for _, f := range folders {
			if tree[f.ID] || f.ParentID == nil {
				continue
			}
			if tree[*f.ParentID] {
				tree[f.ID] = true
				changed = true
			}
		}
	}
	return tree
}

// HumanSize tamaño legible ("512 B", "1.5 KB", "2.3 MB").
func HumanSize(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// FileKind clasifica el archivo para el ícono del repositorio: pdf, doc, xls, img u other.
func FileKind(name, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch {
	case ext == "pdf" || mimeType == "application/pdf":
		return "pdf"
	case ext == "doc" || ext == "docx":
		return "doc"
	case ext == "xls" || ext == "xlsx" || ext == "csv":
		return "xls"
	case strings.HasPrefix(mimeType, "image/"), ext == "png", ext == "jpg", ext == "jpeg", ext == "gif", ext == "webp":
		return "img"
	default:
		return "other"
	}
}
