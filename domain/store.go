package domain

import "encoding/json"

type Store struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CNPJ      string `db:"cnpj" json:"cnpj"`
	Address   string `db:"address" json:"address"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

// UnmarshalJSON accepts both the canonical field names and the legacy
// Portuguese aliases (nome, endereco) still emitted by older backend
// snapshots, so the rename is absorbed once at the wire boundary.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Nome      string `json:"nome"`
		CNPJ      string `json:"cnpj"`
		Address   string `json:"address"`
		Endereco  string `json:"endereco"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ID = raw.ID
	s.Name = raw.Name
	if s.Name == "" {
		s.Name = raw.Nome
	}
	s.CNPJ = raw.CNPJ
	s.Address = raw.Address
	if s.Address == "" {
		s.Address = raw.Endereco
	}
	s.CreatedAt = raw.CreatedAt
	return nil
}
