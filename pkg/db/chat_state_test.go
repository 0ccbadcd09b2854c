package db

import "testing"

func TestContextMapScan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  ContextMap
	}{
		{"nil becomes empty map", nil, ContextMap{}},
		{"empty bytes become empty map", []byte{}, ContextMap{}},
		{"json bytes", []byte(`{"tipo":"DENUNCIA"}`), ContextMap{"tipo": "DENUNCIA"}},
		{"json string", `{"anonimo":"true","nome":"Ana"}`, ContextMap{"anonimo": "true", "nome": "Ana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m ContextMap
			if err := m.Scan(tt.input); err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if len(m) != len(tt.want) {
				t.Fatalf("Scan = %v, want %v", m, tt.want)
			}
			for k, v := range tt.want {
				if m[k] != v {
					t.Errorf("m[%q] = %q, want %q", k, m[k], v)
				}
			}
		})
	}

	var m ContextMap
	if err := m.Scan(42); err == nil {
		t.Fatalf("Scan(int) should fail")
	}
}

func TestContextMapValue(t *testing.T) {
	var nilMap ContextMap
	v, err := nilMap.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "{}" {
		t.Fatalf("nil map Value = %v, want {}", v)
	}

	m := ContextMap{"resumo": "[ELOGIO] ótimo"}
	v, err = m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var round ContextMap
	if err := round.Scan(v); err != nil {
		t.Fatalf("Scan back: %v", err)
	}
	if round["resumo"] != "[ELOGIO] ótimo" {
		t.Fatalf("round trip lost data: %v", round)
	}
}
