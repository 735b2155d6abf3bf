package chem

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/eigenbench-team/eigenbench/harness/core"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"go.uber.org/zap"
)

const chemContainerSettingName = "chem_container"

// ContainerDriverSetting is the [com.chem_container] block of the setting
// file. InputPath is where the molecule JSON lands inside the container; the
// command reads it through the MOLECULE_JSON_PATH env var.
type ContainerDriverSetting struct {
	Image      string
	Command    string
	InputPath  string
	ResultPath string
	Platform   string
	TimeoutSec int
}

func containerDriverSetting() ContainerDriverSetting {
	s := ContainerDriverSetting{
		Image:      "eigenbench/pyscf-driver:latest",
		Command:    "python -m driver --in $MOLECULE_JSON_PATH --out /work/integrals.json",
		InputPath:  "/work/molecule.json",
		ResultPath: "/work/integrals.json",
		TimeoutSec: 300,
	}
	raw, ok := core.GetComponentSetting(chemContainerSettingName)
	if !ok {
		zap.L().Debug("no chem_container setting found, using defaults")
		return s
	}
	pp, ok := raw.(map[string]interface{})
	if !ok {
		zap.L().Error(fmt.Sprintf("chem_container setting has unexpected shape %T", raw))
		return s
	}
	core.SetField("image", &s.Image, pp, s.Image)
	core.SetField("command", &s.Command, pp, s.Command)
	core.SetField("input_path", &s.InputPath, pp, s.InputPath)
	core.SetField("result_path", &s.ResultPath, pp, s.ResultPath)
	core.SetField("platform", &s.Platform, pp, s.Platform)
	if v, ok := pp["timeout_sec"]; ok {
		if sec, ok := v.(int64); ok && sec > 0 {
			s.TimeoutSec = int(sec)
		}
	}
	return s
}

// ContainerAPI is the slice of the container engine API the driver uses.
type ContainerAPI interface {
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error
	ContainerExecCreate(ctx context.Context, container string, config types.ExecConfig) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config types.ExecStartCheck) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (types.ContainerExecInspect, error)
	CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options types.CopyToContainerOptions) error
	CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, types.ContainerPathStat, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error
}

// ContainerDriver runs an electronic structure program in a throwaway
// container and reads the integral file it produces.
type ContainerDriver struct {
	setting ContainerDriverSetting
	client  ContainerAPI
	imgs    client.ImageAPIClient
	system  client.SystemAPIClient
}

func NewContainerDriver() (*ContainerDriver, error) {
	apiClient, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to init container client/reason:%s", err))
		return nil, err
	}
	return &ContainerDriver{
		setting: containerDriverSetting(),
		client:  apiClient,
		imgs:    apiClient,
		system:  apiClient,
	}, nil
}

func (d *ContainerDriver) Name() string {
	return "container_driver"
}

func (d *ContainerDriver) platform() *ocispec.Platform {
	if d.setting.Platform == "" {
		return nil
	}
	parts := strings.SplitN(d.setting.Platform, "/", 2)
	p := &ocispec.Platform{OS: parts[0]}
	if len(parts) == 2 {
		p.Architecture = parts[1]
	}
	return p
}

func (d *ContainerDriver) Load(ctx context.Context, mol *Molecule) (*IntegralSet, error) {
	if err := mol.Validate(); err != nil {
		return nil, err
	}
	molJSON, err := jsonIter.Marshal(mol)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal molecule %s/reason:%s", mol.Key(), err))
		return nil, err
	}
	zap.L().Info(fmt.Sprintf("starting driver container for %s", mol.Key()))
	config := &container.Config{
		Image: d.setting.Image,
		Tty:   true,
		Env:   []string{"MOLECULE_JSON_PATH=" + d.setting.InputPath},
	}
	name := "eigenbench-chem-" + mol.Key()
	created, err := d.client.ContainerCreate(ctx, config, &container.HostConfig{},
		nil, d.platform(), name)
	if err != nil {
		return nil, d.fail(mol, "failed to create container", err)
	}
	id := created.ID
	if err := d.copyMolecule(ctx, id, molJSON); err != nil {
		d.cleanup(name)
		return nil, d.fail(mol, "failed to copy molecule file", err)
	}
	if err := d.client.ContainerStart(ctx, id, types.ContainerStartOptions{}); err != nil {
		d.cleanup(name)
		return nil, d.fail(mol, "failed to start container", err)
	}
	if err := d.exec(ctx, id, d.setting.Command); err != nil {
		d.cleanup(name)
		return nil, d.fail(mol, "failed to run driver command", err)
	}
	data, err := d.copyResult(ctx, id)
	if err != nil {
		d.cleanup(name)
		return nil, d.fail(mol, "failed to copy integral file", err)
	}
	if err := d.stopAndRemove(ctx, name, id); err != nil {
		return nil, d.fail(mol, "failed to tear down container", err)
	}
	is, err := ParseIntegralSet(data)
	if err != nil {
		return nil, err
	}
	zap.L().Info(fmt.Sprintf("driver container for %s is finished", mol.Key()))
	return is, nil
}

// copyMolecule puts the molecule JSON at the input path the driver command
// reads through MOLECULE_JSON_PATH.
func (d *ContainerDriver) copyMolecule(ctx context.Context, id string, molJSON []byte) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name: filepath.Base(d.setting.InputPath),
		Mode: 0644,
		Size: int64(len(molJSON)),
	}); err != nil {
		return err
	}
	if _, err := tw.Write(molJSON); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return d.client.CopyToContainer(ctx, id, filepath.Dir(d.setting.InputPath),
		&buf, types.CopyToContainerOptions{})
}

func (d *ContainerDriver) exec(ctx context.Context, id, cmd string) error {
	execConfig := types.ExecConfig{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          []string{"sh", "-c", cmd},
	}
	created, err := d.client.ContainerExecCreate(ctx, id, execConfig)
	if err != nil {
		return err
	}
	attached, err := d.client.ContainerExecAttach(ctx, created.ID, types.ExecStartCheck{})
	if err != nil {
		return err
	}
	defer attached.Close()

	resultChan := make(chan error)
	go func() {
		_, copyErr := io.Copy(os.Stdout, attached.Reader)
		resultChan <- copyErr
	}()
	select {
	case <-time.After(time.Duration(d.setting.TimeoutSec) * time.Second):
		return fmt.Errorf("driver command timed out after %d seconds", d.setting.TimeoutSec)
	case <-ctx.Done():
		return ctx.Err()
	case err := <-resultChan:
		if err != nil {
			return err
		}
	}
	inspect, err := d.client.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return err
	}
	if inspect.ExitCode != 0 {
		return fmt.Errorf("driver command exit code is %d", inspect.ExitCode)
	}
	return nil
}

func (d *ContainerDriver) copyResult(ctx context.Context, id string) ([]byte, error) {
	resp, _, err := d.client.CopyFromContainer(ctx, id, d.setting.ResultPath)
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	tarReader := tar.NewReader(resp)
	for {
		if _, err := tarReader.Next(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, fmt.Errorf("result archive from %s is empty", d.setting.ResultPath)
}

func (d *ContainerDriver) stopAndRemove(ctx context.Context, name, id string) error {
	var timeout int = 0
	if err := d.client.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return err
	}
	inspected, err := d.client.ContainerInspect(ctx, id)
	if err != nil {
		return err
	}
	if inspected.State.Status != "exited" {
		return fmt.Errorf("container status is %s, not exited", inspected.State.Status)
	}
	return d.client.ContainerRemove(ctx, name, types.ContainerRemoveOptions{Force: true})
}

// cleanup tears down regardless of the container state after a failure.
func (d *ContainerDriver) cleanup(name string) {
	var timeout int = 0
	if err := d.client.ContainerStop(context.Background(), name,
		container.StopOptions{Timeout: &timeout}); err != nil {
		zap.L().Error(fmt.Sprintf("failed to stop container %s/reason:%s", name, err))
		// continue to remove container
	}
	if err := d.client.ContainerRemove(context.Background(), name,
		types.ContainerRemoveOptions{Force: true}); err != nil {
		zap.L().Error(fmt.Sprintf("failed to remove container %s/reason:%s", name, err))
	}
}

func (d *ContainerDriver) fail(mol *Molecule, msg string, err error) error {
	zap.L().Error(fmt.Sprintf("[%s] %s/reason:%s", mol.Key(), msg, err))
	return fmt.Errorf("%s: %w", msg, err)
}

// Probe checks the container daemon responds and the driver image is
// present.
func (d *ContainerDriver) Probe(ctx context.Context) core.Availability {
	if _, err := d.system.Ping(ctx); err != nil {
		return core.Downf("container daemon is not reachable: %s", err)
	}
	if _, _, err := d.imgs.ImageInspectWithRaw(ctx, d.setting.Image); err != nil {
		return core.Downf("driver image %s is not present: %s", d.setting.Image, err)
	}
	return core.Up()
}
