package store

import (
	"testing"
)

// TestInterfaceCompilation verifies that the interfaces compile correctly.
func TestInterfaceCompilation(t *testing.T) {
	var _ InputStore = (*mockInputStore)(nil)
	var _ Store = (*mockStore)(nil)
}

func TestSearchQueryCompile(t *testing.T) {
	tests := []struct {
		name          string
		pattern       string
		caseSensitive bool
		input         string
		want          bool
		wantErr       bool
	}{
		{"insensitive", "LS", false, "ls()", true, false},
		{"sensitive", "LS", true, "ls()", false, false},
		{"regex", `^print\(`, true, "print(x)", true, false},
		{"invalid", "[", false, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &SearchQuery{Pattern: tt.pattern, CaseSensitive: tt.caseSensitive}
			re, err := q.Compile()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error for invalid pattern")
				}
				return
			}
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Mock implementations for interface compliance testing

type mockInputStore struct{}

func (m *mockInputStore) Append(input *AppendInput) (*InputEntry, error) {
	return nil, nil
}

func (m *mockInputStore) List(sessionKey string, limit int) ([]*InputEntry, error) {
	return nil, nil
}

func (m *mockInputStore) Get(id uint) (*InputEntry, error) {
	return nil, ErrNotFound
}

func (m *mockInputStore) Delete(id uint) error {
	return nil
}

func (m *mockInputStore) DeleteOldest(sessionKey string, count int) error {
	return nil
}

func (m *mockInputStore) Count(sessionKey string) (int, error) {
	return 0, nil
}

func (m *mockInputStore) Clear(sessionKey string) error {
	return nil
}

func (m *mockInputStore) Sessions() ([]string, error) {
	return nil, nil
}

func (m *mockInputStore) Search(query *SearchQuery) ([]*InputEntry, error) {
	return nil, nil
}

func (m *mockInputStore) Close() error {
	return nil
}

type mockStore struct{}

func (m *mockStore) Inputs() InputStore {
	return &mockInputStore{}
}

func (m *mockStore) Close() error {
	return nil
}
