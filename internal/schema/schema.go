// Package schema loads the YAML packet table that the dispatch code is generated from.
package schema

import (
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"
)

// KnownStates lists the connection states a schema may declare, in protocol order.
// It does not import package protocol, which packetgen writes into.
var KnownStates = []string{"Handshake", "Status", "Login", "Play"}

type Schema struct {
	Protocol  int     `yaml:"protocol"`
	Direction string  `yaml:"direction"`
	States    []State `yaml:"states"`
}

type State struct {
	State   string   `yaml:"state"`
	Packets []Packet `yaml:"packets"`
}

type Packet struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	State string `yaml:"-"`
}

func Load(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	for i := range s.States {
		for j := range s.States[i].Packets {
			s.States[i].Packets[j].State = s.States[i].State
		}
	}
	return &s, nil
}

// Packets returns every packet in declaration order with its owning state set.
func (s *Schema) Packets() []Packet {
	var out []Packet
	for _, st := range s.States {
		out = append(out, st.Packets...)
	}
	return out
}

// Validate reports every structural problem in the schema: unknown or
// repeated states, ids that are not dense and zero-based per state, and
// packet names that are repeated or not usable as Go identifiers.
func (s *Schema) Validate() []string {
	var issues []string
	if s.Direction == "" {
		issues = append(issues, "direction is empty")
	}
	if len(s.States) == 0 {
		issues = append(issues, "no states declared")
	}

	seenStates := map[string]bool{}
	seenNames := map[string]string{}
	for _, st := range s.States {
		if !knownState(st.State) {
			issues = append(issues, fmt.Sprintf("unknown state %q", st.State))
		}
		if seenStates[st.State] {
			issues = append(issues, fmt.Sprintf("state %s declared more than once", st.State))
		}
		seenStates[st.State] = true

		for i, p := range st.Packets {
			if p.ID != i {
				issues = append(issues, fmt.Sprintf("state %s: packet %s has id 0x%02X, want 0x%02X (ids must be dense and zero-based)", st.State, p.Name, p.ID, i))
			}
			if !token.IsIdentifier(p.Name) || !token.IsExported(p.Name) {
				issues = append(issues, fmt.Sprintf("state %s: packet name %q is not an exported Go identifier", st.State, p.Name))
			}
			if prev, ok := seenNames[p.Name]; ok {
				issues = append(issues, fmt.Sprintf("packet name %s used in both %s and %s", p.Name, prev, st.State))
				continue
			}
			seenNames[p.Name] = st.State
		}
	}
	return issues
}

func knownState(name string) bool {
	for _, k := range KnownStates {
		if k == name {
			return true
		}
	}
	return false
}
