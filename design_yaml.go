package fabricate

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// designDocument is the YAML shape a declarative design is loaded from:
//
//	levels:
//	  - name: regions
//	    n: 5
//	    variables:
//	      - name: gdp
//	        expr: normal(N, 10, 2)
//	  - name: cities
//	    counts: [2, 3, 2, 3, 2]
//	    variables:
//	      - name: coastal
//	        expr: "[true, false]"
//	        recycle: true
type designDocument struct {
	Levels []levelDocument `yaml:"levels"`
}

type levelDocument struct {
	Name      string             `yaml:"name"`
	N         int                `yaml:"n"`
	Counts    []int              `yaml:"counts"`
	Modify    bool               `yaml:"modify"`
	Variables []variableDocument `yaml:"variables"`
}

type variableDocument struct {
	Name    string `yaml:"name"`
	Expr    string `yaml:"expr"`
	Recycle bool   `yaml:"recycle"`
}

// LoadDesignYAML parses a declarative design document into a Design. Declared
// variables become Expression generators against the design's configured
// engine; declaration order is preserved.
func LoadDesignYAML(payload []byte, opts ...Option) (*Design, error) {
	var doc designDocument
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("fabricate: invalid design document: %w", err)
	}
	if len(doc.Levels) == 0 {
		return nil, fmt.Errorf("fabricate: design document declares no levels")
	}
	levels := make([]LevelSpec, 0, len(doc.Levels))
	for _, level := range doc.Levels {
		if level.Name == "" {
			return nil, fmt.Errorf("fabricate: design document level missing name")
		}
		spec := LevelSpec{
			Name:   level.Name,
			N:      level.N,
			Counts: level.Counts,
			Modify: level.Modify,
		}
		for _, v := range level.Variables {
			if v.Name == "" {
				return nil, fmt.Errorf("fabricate: level %q declares a variable without a name", level.Name)
			}
			if v.Expr == "" {
				return nil, fmt.Errorf("fabricate: level %q variable %q has no expression", level.Name, v.Name)
			}
			spec.Variables = append(spec.Variables, Variable{
				Name:    v.Name,
				Gen:     Expression(v.Expr),
				Recycle: v.Recycle,
			})
		}
		levels = append(levels, spec)
	}
	return New(levels, opts...), nil
}
