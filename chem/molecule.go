// Package chem produces qubit Hamiltonians for small molecules from
// electronic structure integrals.
package chem

import (
	"fmt"
	"strings"
)

// Atom is one nucleus with a position in Angstrom.
type Atom struct {
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}

// Molecule describes the electronic structure problem handed to a driver.
// Distance is the template parameter of a bond sweep.
type Molecule struct {
	Name         string  `json:"name"`
	Atoms        []Atom  `json:"atoms"`
	Charge       int     `json:"charge"`
	Multiplicity int     `json:"multiplicity"`
	Basis        string  `json:"basis"`
	Distance     float64 `json:"distance"`
}

// Hydrogen builds the H2 template specialized to one bond distance in
// Angstrom. The molecule sits on the z axis with one atom at the origin.
func Hydrogen(distance float64) *Molecule {
	return &Molecule{
		Name: "H2",
		Atoms: []Atom{
			{Symbol: "H"},
			{Symbol: "H", Z: distance},
		},
		Charge:       0,
		Multiplicity: 1,
		Basis:        "sto-3g",
		Distance:     distance,
	}
}

func (m *Molecule) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("molecule has no name")
	}
	if len(m.Atoms) == 0 {
		return fmt.Errorf("molecule %s has no atoms", m.Name)
	}
	if m.Basis == "" {
		return fmt.Errorf("molecule %s has no basis set", m.Name)
	}
	if m.Distance <= 0 {
		return fmt.Errorf("molecule %s has non-positive bond distance %g", m.Name, m.Distance)
	}
	return nil
}

// Key is the lookup key a driver uses to resolve precomputed integrals.
func (m *Molecule) Key() string {
	return fmt.Sprintf("%s_d%.3f", strings.ToLower(m.Name), m.Distance)
}
