package channel

import "testing"

func TestLookupAliases(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
	}{
		{"711", "711"},
		{"7-11", "711"},
		{"萊爾富", "OK/萊爾富"},
		{"OK超商", "OK/萊爾富"},
		{"美廉社", "美聯社"},
		{" 全家 ", "全家"},
	}
	for _, tt := range tests {
		got, ok := Canonical(tt.name)
		if !ok || got != tt.canonical {
			t.Errorf("Canonical(%q) = %q, %v; want %q", tt.name, got, ok, tt.canonical)
		}
	}

	if Valid("unknown-mart") {
		t.Error("unknown channel must not be valid")
	}
}

func TestNamesAndList(t *testing.T) {
	names := Names()
	if len(names) != Count {
		t.Fatalf("expected %d channels, got %d", Count, len(names))
	}
	if names[0] != "PX/大全聯" || names[Count-1] != "市面經銷" {
		t.Errorf("unexpected bucket order: %v", names)
	}

	names[0] = "mutated"
	if Names()[0] != "PX/大全聯" {
		t.Error("Names must return a copy")
	}

	list := List()
	ok := list[5]
	if ok.Name != "OK/萊爾富" || len(ok.Aliases) != 2 {
		t.Errorf("expected two aliases for OK/萊爾富, got %+v", ok)
	}
}
