package db

import (
	"errors"
	"testing"
	"time"
)

func strptr(s string) *string { return &s }

func TestUsuarioBeforeSave(t *testing.T) {
	tests := []struct {
		name    string
		usuario Usuario
		wantErr error
	}{
		{
			name: "anonymous with phone passes",
			usuario: Usuario{
				Telefone:          strptr("5511988887777"),
				Anonimo:           true,
				LgpdConsentimento: ConsentimentoConcordo,
			},
		},
		{
			name: "identified with all fields passes",
			usuario: Usuario{
				Nome:              strptr("João Silva"),
				Telefone:          strptr("11999999999"),
				Email:             strptr("joao@email.com"),
				LgpdConsentimento: ConsentimentoConcordo,
			},
		},
		{
			name: "identified without any contact fails",
			usuario: Usuario{
				LgpdConsentimento: ConsentimentoConcordo,
			},
			wantErr: ErrUsuarioSemContato,
		},
		{
			name: "missing consent fails",
			usuario: Usuario{
				Nome: strptr("João Silva"),
			},
			wantErr: ErrConsentimentoAusente,
		},
		{
			name: "bad email fails",
			usuario: Usuario{
				Nome:              strptr("João Silva"),
				Email:             strptr("not-an-email"),
				LgpdConsentimento: ConsentimentoConcordo,
			},
			wantErr: ErrEmailInvalido,
		},
		{
			name: "short phone fails",
			usuario: Usuario{
				Nome:              strptr("João Silva"),
				Telefone:          strptr("12345"),
				LgpdConsentimento: ConsentimentoConcordo,
			},
			wantErr: ErrTelefoneInvalido,
		},
		{
			name: "phone with punctuation counts digits only",
			usuario: Usuario{
				Nome:              strptr("João Silva"),
				Telefone:          strptr("(11) 99999-9999"),
				LgpdConsentimento: ConsentimentoConcordo,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.usuario.BeforeSave(nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BeforeSave() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUsuarioBeforeSave_AnonymousClearsIdentity(t *testing.T) {
	u := Usuario{
		Nome:              strptr("João Silva"),
		Telefone:          strptr("5511988887777"),
		Email:             strptr("joao@email.com"),
		Anonimo:           true,
		LgpdConsentimento: ConsentimentoConcordo,
	}
	if err := u.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if u.Nome != nil || u.Email != nil {
		t.Errorf("identity not cleared: nome=%v email=%v", u.Nome, u.Email)
	}
	if u.Telefone == nil {
		t.Errorf("phone must survive for linkage")
	}
}

func TestUsuarioBeforeSave_FillsTimestamps(t *testing.T) {
	u := Usuario{
		Nome:              strptr("João Silva"),
		LgpdConsentimento: ConsentimentoConcordo,
	}
	if err := u.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if u.DataConsentimento == nil {
		t.Errorf("consent timestamp not defaulted")
	}
	if u.DataCriacao.IsZero() {
		t.Errorf("creation timestamp not defaulted")
	}

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	u2 := Usuario{
		Nome:              strptr("João Silva"),
		LgpdConsentimento: ConsentimentoConcordo,
		DataConsentimento: &fixed,
		DataCriacao:       fixed,
	}
	if err := u2.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if !u2.DataConsentimento.Equal(fixed) || !u2.DataCriacao.Equal(fixed) {
		t.Errorf("explicit timestamps were overwritten")
	}
}

func TestParseTipoManifestacao(t *testing.T) {
	tests := []struct {
		in     string
		want   TipoManifestacao
		wantOk bool
	}{
		{"RECLAMACAO", TipoReclamacao, true},
		{"reclamacao", TipoReclamacao, true},
		{"Elogio", TipoElogio, true},
		{"DENUNCIA", TipoDenuncia, true},
		{"sugestao", TipoSugestao, true},
		{"PEDIDO", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTipoManifestacao(tt.in)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseTipoManifestacao(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseCategoriaDenuncia(t *testing.T) {
	tests := []struct {
		in     string
		want   CategoriaDenuncia
		wantOk bool
	}{
		{"ASSEDIO", CategoriaAssedio, true},
		{"assedio", CategoriaAssedio, true},
		{"Corrupcao", CategoriaCorrupcao, true},
		{"OUTROS", CategoriaOutros, true},
		{"FRAUDE", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategoriaDenuncia(tt.in)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseCategoriaDenuncia(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}
