// Package catalog holds the static department reference data.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Department is an immutable catalog entry.
type Department struct {
	ID    string
	Name  string
	Men   int
	Women int
	Color string
}

// Catalog is an ordered set of departments.
type Catalog struct {
	entries []Department
	index   map[string]int
}

var defaultEntries = []Department{
	{ID: "atendimento", Name: "Atendimento", Men: 1, Women: 0, Color: "#007bff"},
	{ID: "camaras", Name: "Câmaras Setoriais", Men: 1, Women: 1, Color: "#17a2b8"},
	{ID: "cieq", Name: "CIEQ – Estágio", Men: 0, Women: 1, Color: "#28a745"},
	{ID: "comercial", Name: "Comercial", Men: 1, Women: 2, Color: "#6f42c1"},
	{ID: "compras", Name: "Compras", Men: 1, Women: 0, Color: "#6610f2"},
	{ID: "marketing", Name: "Marketing", Men: 0, Women: 1, Color: "#e83e8c"},
	{ID: "projetos", Name: "Projetos", Men: 1, Women: 1, Color: "#fd7e14"},
	{ID: "rodada", Name: "Rodada de Negócios", Men: 1, Women: 3, Color: "#20c997"},
	{ID: "geral", Name: "Serviço Geral", Men: 1, Women: 2, Color: "#dc3545"},
	{ID: "faturamento-receber", Name: "Faturamento/Contas a receber", Men: 1, Women: 1, Color: "#c29b0c"},
	{ID: "financeiro-contabilidade", Name: "Financeiro/Contabilidade", Men: 0, Women: 3, Color: "#6c757d"},
	{ID: "coord-diretoria", Name: "Diretoria Executiva/Coord. Adm.", Men: 1, Women: 1, Color: "#343a40"},
	{ID: "historiador", Name: "Historiador", Men: 1, Women: 0, Color: "#d65f1d"},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// New validates entries and builds a Catalog.
func New(entries []Department) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog is empty")
	}
	c := &Catalog{
		entries: make([]Department, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, d := range entries {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return nil, fmt.Errorf("department %d: id is empty", i)
		}
		if _, ok := c.index[d.ID]; ok {
			return nil, fmt.Errorf("department %q: duplicate id", d.ID)
		}
		if d.Men < 0 || d.Women < 0 {
			return nil, fmt.Errorf("department %q: character counts must be >= 0", d.ID)
		}
		if strings.TrimSpace(d.Name) == "" {
			d.Name = d.ID
		}
		c.index[d.ID] = len(c.entries)
		c.entries = append(c.entries, d)
	}
	return c, nil
}

// All returns a copy of the entries in catalog order.
func (c *Catalog) All() []Department {
	out := make([]Department, len(c.entries))
	copy(out, c.entries)
	return out
}

// IDs returns the department ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.entries))
	for i, d := range c.entries {
		ids[i] = d.ID
	}
	return ids
}

// Lookup finds a department by id.
func (c *Catalog) Lookup(id string) (Department, bool) {
	i, ok := c.index[id]
	if !ok {
		return Department{}, false
	}
	return c.entries[i], true
}

// Len returns the number of departments.
func (c *Catalog) Len() int {
	return len(c.entries)
}
