package simnet

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTOML = `
compartments = ["S", "I", "R"]

[simulation]
num_instances = 1
num_threads = 1
seed = 7
num_nodes = 1
u0 = [[99, 1, 0]]
tspan = [0, 1, 2, 3]
gdata = [0.3]

[logging]
log_path = "%s"
logger_type = "csv"

[[transition]]
name = "infection"
gdata_modifier = 0
reactants = [0, 1]
stoichiometry = [-1, 1, 0]

[[transition]]
name = "recovery"
rate_constant = 0.1
gdata_modifier = -1
reactants = [1]
stoichiometry = [0, -1, 1]
depends_on = [0]

[[event_class]]
name = "select_S"
compartments = [0]

[[event]]
kind = "exit"
time = 1
node = 1
proportion = 0.1
select = 0
shift = -1
`

func writeSampleTOML(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	contents := []byte(sprintfTOML(filepath.Join(dir, "out")))
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatalf("unexpected error writing fixture: %s", err)
	}
	return path
}

// sprintfTOML substitutes the log_path placeholder without pulling in fmt
// just for this one call site.
func sprintfTOML(logPath string) string {
	out := make([]byte, 0, len(sampleTOML)+len(logPath))
	for i := 0; i < len(sampleTOML); i++ {
		if i+1 < len(sampleTOML) && sampleTOML[i] == '%' && sampleTOML[i+1] == 's' {
			out = append(out, logPath...)
			i++
			continue
		}
		out = append(out, sampleTOML[i])
	}
	return string(out)
}

func TestLoadRunConfig_ValidFile(t *testing.T) {
	path := writeSampleTOML(t)
	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(cfg.Compartments) != 3 {
		t.Errorf("expected 3 compartments, got %d", len(cfg.Compartments))
	}
	if len(cfg.Transitions) != 2 {
		t.Errorf("expected 2 transitions, got %d", len(cfg.Transitions))
	}
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	if _, err := LoadRunConfig("/nonexistent/path.toml"); err == nil {
		t.Errorf("expected an error for a missing config file")
	}
}

func TestRunConfig_BuildModelConfig(t *testing.T) {
	path := writeSampleTOML(t)
	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	modelCfg, err := cfg.BuildModelConfig()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if modelCfg.Nc != 3 || modelCfg.Nn != 1 {
		t.Errorf("expected Nc=3, Nn=1, got Nc=%d, Nn=%d", modelCfg.Nc, modelCfg.Nn)
	}
	if modelCfg.G.NumCols() != 2 {
		t.Errorf("expected G to have 2 columns (one per transition), got %d", modelCfg.G.NumCols())
	}
	if modelCfg.S.NumRows() != 3 || modelCfg.S.NumCols() != 2 {
		t.Errorf("expected S to be 3x2, got %dx%d", modelCfg.S.NumRows(), modelCfg.S.NumCols())
	}
	if len(modelCfg.Propensities) != 2 {
		t.Errorf("expected 2 propensities, got %d", len(modelCfg.Propensities))
	}
	model, err := NewModel(modelCfg)
	if err != nil {
		t.Fatalf("unexpected error building model from TOML config: %s", err)
	}
	if model.numNodes() != 1 {
		t.Errorf("expected 1 node, got %d", model.numNodes())
	}
}
