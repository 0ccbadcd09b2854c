package service

import (
	"testing"

	"github.com/konekta/ouvidoria/pkg/db"
)

func TestCreateAnonymous_AlwaysNewRecord(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewPartyService(gdb)

	first, err := svc.CreateAnonymous("5511988887777")
	if err != nil {
		t.Fatalf("CreateAnonymous: %v", err)
	}
	second, err := svc.CreateAnonymous("5511988887777")
	if err != nil {
		t.Fatalf("CreateAnonymous (again): %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("anonymous parties must never be reused, got same id %s", first.ID)
	}

	if !first.Anonimo {
		t.Errorf("Anonimo = false, want true")
	}
	if first.Nome != nil || first.Email != nil {
		t.Errorf("anonymous party kept identity fields: nome=%v email=%v", first.Nome, first.Email)
	}
	if first.Telefone == nil || *first.Telefone != "5511988887777" {
		t.Errorf("Telefone = %v, want phone key kept for linkage", first.Telefone)
	}
	if first.LgpdConsentimento != db.ConsentimentoConcordo {
		t.Errorf("LgpdConsentimento = %s, want %s", first.LgpdConsentimento, db.ConsentimentoConcordo)
	}
	if first.DataConsentimento == nil {
		t.Errorf("DataConsentimento not set")
	}

	var count int64
	gdb.Model(&db.Usuario{}).Count(&count)
	if count != 2 {
		t.Fatalf("usuario count = %d, want 2", count)
	}
}

func TestResolveIdentified_CreatesThenOverwrites(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewPartyService(gdb)

	created, err := svc.ResolveIdentified("João Silva", "11999999999", "joao@email.com")
	if err != nil {
		t.Fatalf("ResolveIdentified (create): %v", err)
	}
	if created.Anonimo {
		t.Errorf("Anonimo = true, want false")
	}
	if created.Nome == nil || *created.Nome != "João Silva" {
		t.Errorf("Nome = %v", created.Nome)
	}

	updated, err := svc.ResolveIdentified("J. Silva", "11999999999", "novo@email.com")
	if err != nil {
		t.Fatalf("ResolveIdentified (update): %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("same phone must resolve to the same record: %s vs %s", updated.ID, created.ID)
	}
	if updated.Nome == nil || *updated.Nome != "J. Silva" {
		t.Errorf("Nome after update = %v", updated.Nome)
	}
	if updated.Email == nil || *updated.Email != "novo@email.com" {
		t.Errorf("Email after update = %v", updated.Email)
	}

	var count int64
	gdb.Model(&db.Usuario{}).Count(&count)
	if count != 1 {
		t.Fatalf("usuario count = %d, want 1", count)
	}
}

func TestResolveIdentified_DistinctPhonesDistinctRecords(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewPartyService(gdb)

	a, err := svc.ResolveIdentified("Ana", "11911112222", "")
	if err != nil {
		t.Fatalf("ResolveIdentified: %v", err)
	}
	b, err := svc.ResolveIdentified("Bruno", "11933334444", "")
	if err != nil {
		t.Fatalf("ResolveIdentified: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("distinct phones resolved to the same record")
	}
	if a.Email != nil {
		t.Errorf("empty email should stay nil, got %v", a.Email)
	}
}

func TestCountManifestacoesByPhone(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewPartyService(gdb)

	u, err := svc.ResolveIdentified("Carla", "11955556666", "carla@email.com")
	if err != nil {
		t.Fatalf("ResolveIdentified: %v", err)
	}
	other, err := svc.ResolveIdentified("Davi", "11977778888", "")
	if err != nil {
		t.Fatalf("ResolveIdentified: %v", err)
	}

	mk := func(id, protocolo, usuarioID string) {
		t.Helper()
		err := gdb.Create(&db.Manifestacao{
			ID:        id,
			Tipo:      db.TipoSugestao,
			Descricao: "detalhes",
			Protocolo: protocolo,
			UsuarioID: usuarioID,
		}).Error
		if err != nil {
			t.Fatalf("create manifestação: %v", err)
		}
	}
	mk("m1", "SUG20250101-0001", u.ID)
	mk("m2", "SUG20250101-0002", u.ID)
	mk("m3", "SUG20250101-0003", other.ID)

	count, err := svc.CountManifestacoesByPhone("11955556666")
	if err != nil {
		t.Fatalf("CountManifestacoesByPhone: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	count, err = svc.CountManifestacoesByPhone("11900000000")
	if err != nil {
		t.Fatalf("CountManifestacoesByPhone (unknown): %v", err)
	}
	if count != 0 {
		t.Fatalf("count for unknown phone = %d, want 0", count)
	}
}
