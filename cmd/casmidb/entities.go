package main

import "casmidb/pkg/schema"

// Alcohol has no declared key, so rows get a synthesized auto-increment id.
type Alcohol struct {
	Name   string
	ABV    int32
	Origin string
}

func (a *Alcohol) Map(m *schema.Mapping) {
	m.Text("name", &a.Name)
	m.Int32("abv", &a.ABV)
	m.Text("origin", &a.Origin)
}

// Alcohol2 is keyed by Name and stored in alcohol_table. Value is runtime
// only.
type Alcohol2 struct {
	Name   string
	ABV    int32
	Origin string
	Value  int32
}

func (a *Alcohol2) Map(m *schema.Mapping) {
	m.Table("alcohol_table")
	m.Text("name", &a.Name).PrimaryKey()
	m.Int32("abv", &a.ABV).Field("alcohol_by_volume")
	m.Text("origin", &a.Origin)
	m.Int32("value", &a.Value).Ignore()
}
