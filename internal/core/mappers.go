package core

import (
	"fmt"

	"github.com/hashicorp/go-argmapper"
	"github.com/lseinc/vagrant/internal/models"
	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/lseinc/vagrant/internal/serverclient"
)

// defaultMappers builds the mapper list seeded into a scope whose options
// supplied none: the record-to-ref conversions plus the CLI-argument
// key/value mapper.
func defaultMappers() ([]*argmapper.Func, error) {
	fns := []interface{}{
		func(b *models.Basis) *serverclient.BasisRef {
			return &serverclient.BasisRef{ResourceID: b.ResourceID, Name: b.Name}
		},
		func(p *models.Project) *serverclient.ProjectRef {
			return &serverclient.ProjectRef{ResourceID: p.ResourceID, BasisID: p.BasisID, Name: p.Name}
		},
		func(t *models.Target) *serverclient.TargetRef {
			return &serverclient.TargetRef{ResourceID: t.ResourceID, ProjectID: t.ProjectID, Name: t.Name}
		},
		plugin.ArgsToMap,
	}

	mappers := make([]*argmapper.Func, 0, len(fns))
	for _, fn := range fns {
		m, err := argmapper.NewFunc(fn)
		if err != nil {
			return nil, fmt.Errorf("building default mapper: %w", err)
		}
		mappers = append(mappers, m)
	}
	return mappers, nil
}
