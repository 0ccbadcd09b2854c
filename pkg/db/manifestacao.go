// Database models for manifestações (citizen reports)
package db

import (
	"strings"
	"time"
)

// TipoManifestacao is the kind of report a citizen is filing
type TipoManifestacao string

const (
	TipoElogio     TipoManifestacao = "ELOGIO"
	TipoSugestao   TipoManifestacao = "SUGESTAO"
	TipoReclamacao TipoManifestacao = "RECLAMACAO"
	TipoDenuncia   TipoManifestacao = "DENUNCIA"
)

// TiposManifestacao lists the selectable types in menu order
var TiposManifestacao = []TipoManifestacao{
	TipoElogio,
	TipoSugestao,
	TipoReclamacao,
	TipoDenuncia,
}

// ParseTipoManifestacao matches a user reply against the type tokens,
// case-insensitively. ok is false for anything outside the enum.
func ParseTipoManifestacao(s string) (TipoManifestacao, bool) {
	for _, t := range TiposManifestacao {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// CategoriaDenuncia narrows a denúncia to an intake queue
type CategoriaDenuncia string

const (
	CategoriaAssedio       CategoriaDenuncia = "ASSEDIO"
	CategoriaCorrupcao     CategoriaDenuncia = "CORRUPCAO"
	CategoriaDiscriminacao CategoriaDenuncia = "DISCRIMINACAO"
	CategoriaSeguranca     CategoriaDenuncia = "SEGURANCA"
	CategoriaOutros        CategoriaDenuncia = "OUTROS"
)

// CategoriasDenuncia lists the selectable categories in menu order
var CategoriasDenuncia = []CategoriaDenuncia{
	CategoriaAssedio,
	CategoriaCorrupcao,
	CategoriaDiscriminacao,
	CategoriaSeguranca,
	CategoriaOutros,
}

// ParseCategoriaDenuncia matches a user reply against the category tokens,
// case-insensitively.
func ParseCategoriaDenuncia(s string) (CategoriaDenuncia, bool) {
	for _, c := range CategoriasDenuncia {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Manifestacao is the finalized intake record. It is created exactly once,
// at finalization, and never mutated afterwards.
type Manifestacao struct {
	ID          string            `json:"id" gorm:"primaryKey;size:36"`
	Tipo        TipoManifestacao  `json:"tipo" gorm:"size:20;not null"`
	Categoria   CategoriaDenuncia `json:"categoria,omitempty" gorm:"size:30"`
	Descricao   string            `json:"descricao" gorm:"type:text;not null"`
	Resumo      string            `json:"resumo" gorm:"size:500"`
	Protocolo   string            `json:"protocolo" gorm:"size:30;not null;uniqueIndex"`
	UsuarioID   string            `json:"usuario_id" gorm:"size:36;index;not null"`
	DataCriacao time.Time         `json:"data_criacao" gorm:"not null"`
}

// TableName returns the table name
func (Manifestacao) TableName() string {
	return "manifestacoes"
}

// ProtocolCounter is the per (tipo, day) protocol sequence. The composite
// primary key doubles as the uniqueness guarantee; increments happen inside
// a transaction so two finalizations never read the same value.
type ProtocolCounter struct {
	CaseType TipoManifestacao `json:"case_type" gorm:"primaryKey;size:20"`
	Day      string           `json:"day" gorm:"primaryKey;size:8"`
	Value    int64            `json:"value" gorm:"not null"`
}

// TableName returns the table name
func (ProtocolCounter) TableName() string {
	return "protocol_counters"
}
