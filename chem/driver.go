package chem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"go.uber.org/zap"
)

// Driver resolves the integrals of one molecular geometry. Load may reach an
// external collaborator, so callers probe first and pass a deadline context.
type Driver interface {
	Name() string
	Load(ctx context.Context, mol *Molecule) (*IntegralSet, error)
	Probe(ctx context.Context) core.Availability
}

// FileDriver reads precomputed integral files from a directory. The file of
// a geometry is <key>.json with the molecule key from Molecule.Key.
type FileDriver struct {
	dir string
}

func NewFileDriver(conf *core.Conf) *FileDriver {
	return &FileDriver{dir: conf.IntegralDir}
}

func (d *FileDriver) Name() string {
	return "file_driver"
}

func (d *FileDriver) path(mol *Molecule) string {
	return filepath.Join(d.dir, mol.Key()+".json")
}

func (d *FileDriver) Load(ctx context.Context, mol *Molecule) (*IntegralSet, error) {
	if err := mol.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := d.path(mol)
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read integral file %s/reason:%s", path, err))
		return nil, err
	}
	is, err := ParseIntegralSet(data)
	if err != nil {
		return nil, err
	}
	if is.Molecule != mol.Name {
		return nil, fmt.Errorf("integral file %s holds %s, want %s", path, is.Molecule, mol.Name)
	}
	zap.L().Debug(fmt.Sprintf("loaded integrals of %s from %s", mol.Key(), path))
	return is, nil
}

// Probe checks the integral directory is present and readable.
func (d *FileDriver) Probe(ctx context.Context) core.Availability {
	if err := ctx.Err(); err != nil {
		return core.Downf("probe cancelled: %s", err)
	}
	info, err := os.Stat(d.dir)
	if err != nil {
		return core.Downf("integral dir %s is not accessible: %s", d.dir, err)
	}
	if !info.IsDir() {
		return core.Downf("integral path %s is not a directory", d.dir)
	}
	if _, err := os.ReadDir(d.dir); err != nil {
		return core.Downf("integral dir %s is not readable: %s", d.dir, err)
	}
	return core.Up()
}
