// Shared types for the ouvidoria intake service
package models

import (
	"github.com/konekta/ouvidoria/pkg/db"
)

// ========== Type aliases for database types ==========
// These allow other packages to use models.ChatState instead of db.ChatState

type ChatState = db.ChatState
type ContextMap = db.ContextMap
type Usuario = db.Usuario
type Manifestacao = db.Manifestacao
type ProtocolCounter = db.ProtocolCounter

// ========== Constant aliases from db package ==========

// Chat state constants
const (
	EstadoInicio              = db.EstadoInicio
	EstadoIdentificacao       = db.EstadoIdentificacao
	EstadoColetaIdentificacao = db.EstadoColetaIdentificacao
	EstadoLgpd                = db.EstadoLgpd
	EstadoTipoManifestacao    = db.EstadoTipoManifestacao
	EstadoCategoriaDenuncia   = db.EstadoCategoriaDenuncia
	EstadoColetaDetalhes      = db.EstadoColetaDetalhes
	EstadoResumoConfirmacao   = db.EstadoResumoConfirmacao
)

// LGPD consent constants
const (
	ConsentimentoPendente    = db.ConsentimentoPendente
	ConsentimentoConcordo    = db.ConsentimentoConcordo
	ConsentimentoNaoConcordo = db.ConsentimentoNaoConcordo
)

// Manifestação type constants
const (
	TipoElogio     = db.TipoElogio
	TipoSugestao   = db.TipoSugestao
	TipoReclamacao = db.TipoReclamacao
	TipoDenuncia   = db.TipoDenuncia
)
