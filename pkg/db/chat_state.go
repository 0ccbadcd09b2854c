// Database models for conversation state
package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// EstadoChat identifies the current step of an intake dialogue
type EstadoChat string

const (
	EstadoInicio              EstadoChat = "INICIO"               // Waiting for the first message
	EstadoIdentificacao       EstadoChat = "IDENTIFICACAO"        // Asked: identify or stay anonymous
	EstadoColetaIdentificacao EstadoChat = "COLETA_IDENTIFICACAO" // Collecting name/phone/email
	EstadoLgpd                EstadoChat = "LGPD"                 // Waiting for LGPD consent
	EstadoTipoManifestacao    EstadoChat = "TIPO_MANIFESTACAO"    // Selecting the case type
	EstadoCategoriaDenuncia   EstadoChat = "CATEGORIA_DENUNCIA"   // Selecting the denúncia category
	EstadoColetaDetalhes      EstadoChat = "COLETA_DETALHES"      // Collecting the free-text description
	EstadoResumoConfirmacao   EstadoChat = "RESUMO_CONFIRMACAO"   // Waiting for summary confirmation
)

// ChatState holds the durable dialogue state for one phone number.
// There is exactly one row per normalized phone key, and the context map
// collected across turns lives on the same row so that a state transition
// and its context writes commit together.
type ChatState struct {
	PhoneNumber  string     `json:"phone_number" gorm:"primaryKey;size:20"`
	CurrentState EstadoChat `json:"current_state" gorm:"size:30;not null"`
	Context      ContextMap `json:"context" gorm:"type:json"`
	LastUpdate   time.Time  `json:"last_update" gorm:"not null"`
}

// TableName returns the table name
func (ChatState) TableName() string {
	return "chat_states"
}

// Context keys accumulated during an intake dialogue
const (
	ContextNome      = "nome"
	ContextTelefone  = "telefone"
	ContextEmail     = "email"
	ContextAnonimo   = "anonimo"
	ContextUsuarioID = "usuario_id"
	ContextTipo      = "tipo"
	ContextCategoria = "categoria"
	ContextDescricao = "descricao"
	ContextResumo    = "resumo"
)

// ContextMap is a string map stored as a JSON column
type ContextMap map[string]string

// Scan implements sql.Scanner for ContextMap
func (m *ContextMap) Scan(value interface{}) error {
	if value == nil {
		*m = ContextMap{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ContextMap: unsupported type")
	}
	if len(bytes) == 0 {
		*m = ContextMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// Value implements driver.Valuer for ContextMap
func (m ContextMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
