package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/cli"
	"github.com/pineunity/apmec-horizon/internal/deploy"
)

var (
	deployFlags        cli.CommandFlags
	deployName         string
	deployDescription  string
	deployCatalog      string
	deployVIM          string
	deployParamFile    string
	deployParamValues  string
	deployConfigFile   string
	deployConfigValues string
)

var deployCmd = &cobra.Command{
	Use:   "deploy KIND",
	Short: "Deploy a MEC application or network service from a catalog entry",
	Long: fmt.Sprintf(`Create an instance of KIND from a catalog entry.

Deployable kinds: %s

Parameter values and configuration are YAML documents given either as a
.yaml file or inline, never both. Deploys are recorded in the operations
log; a second deploy of the same name is rejected while the first is still
in flight.

Examples:
  mecpanel deploy meca --name edge-a --catalog 1c7a... --vim site-1
  mecpanel deploy mea --name fw --catalog fw-mead --param-file params.yaml
  mecpanel deploy ns --name svc --catalog nsd-1 --param-values 'flavor: small'`, strings.Join(deployableKindNames(), ", ")),
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeKinds(deployableKindNames),
	RunE:              runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)
	cli.RegisterCommonFlags(deployCmd, &deployFlags)

	f := deployCmd.Flags()
	f.StringVar(&deployName, "name", "", "Name of the new instance")
	f.StringVar(&deployDescription, "description", "", "Description of the new instance")
	f.StringVar(&deployCatalog, "catalog", "", "ID of the catalog entry to deploy")
	f.StringVar(&deployVIM, "vim", "", "ID of the VIM to deploy on (default: the API's default VIM)")
	f.StringVar(&deployParamFile, "param-file", "", "Parameter values as a .yaml file")
	f.StringVar(&deployParamValues, "param-values", "", "Parameter values as inline YAML")
	f.StringVar(&deployConfigFile, "config-file", "", "Configuration as a .yaml file")
	f.StringVar(&deployConfigValues, "config-values", "", "Configuration as inline YAML")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	kind, err := deployableKindArg(args[0])
	if err != nil {
		return err
	}

	req := deploy.Request{
		Name:        deployName,
		Description: deployDescription,
		CatalogID:   deployCatalog,
		VIMID:       deployVIM,
		ParamRaw:    deployParamValues,
		ConfigRaw:   deployConfigValues,
	}
	if req.ParamFile, err = readUpload(deployParamFile); err != nil {
		return err
	}
	if req.ConfigFile, err = readUpload(deployConfigFile); err != nil {
		return err
	}

	executor, err := newExecutor(cmd, &deployFlags)
	if err != nil {
		return err
	}
	defer executor.Close()

	return executor.Deploy(cmd.Context(), kind, req)
}

// readUpload reads a values file the way the panel receives an upload.
func readUpload(path string) (*deploy.Upload, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &deploy.Upload{Filename: filepath.Base(path), Content: string(content)}, nil
}
