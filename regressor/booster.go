package regressor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"demand-forecast-api/models"

	"github.com/xh3b4sd/tracer"
)

// Objectives whose prediction is the raw margin.
var identityObjectives = map[string]bool{
	"reg:squarederror":     true,
	"reg:linear":           true,
	"reg:absoluteerror":    true,
	"reg:pseudohubererror": true,
	"reg:quantileerror":    true,
}

// Booster evaluates an XGBoost gbtree model saved with
//
//	booster.save_model("xgb_model.json")
//
// Each tree sends a row left when x < split_condition, missing values follow
// default_left, and the leaf value sits in split_conditions. The prediction is
// base_score plus the sum of all leaves.
type Booster struct {
	names     models.Schema
	baseScore float64
	trees     []tree
	version   string
}

type tree struct {
	left        []int
	right       []int
	split       []int
	cond        []float32
	defaultLeft []bool
}

type boosterFile struct {
	Learner struct {
		Attributes      map[string]string `json:"attributes"`
		FeatureNames    []string          `json:"feature_names"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Param struct {
					NumParallelTree string `json:"num_parallel_tree"`
				} `json:"gbtree_model_param"`
				Trees           []treeFile `json:"trees"`
				IterationIndptr []int      `json:"iteration_indptr"`
			} `json:"model"`
		} `json:"gradient_booster"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
			NumTarget  string `json:"num_target"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
	Version []int `json:"version"`
}

type treeFile struct {
	LeftChildren    []int      `json:"left_children"`
	RightChildren   []int      `json:"right_children"`
	SplitIndices    []int      `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	SplitType       []int      `json:"split_type"`
	DefaultLeft     []flexBool `json:"default_left"`
}

// flexBool accepts both 0/1 and true/false, which differ across XGBoost
// releases.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// LoadBooster reads an XGBoost JSON model. fallbackNames is used when the
// file has no feature_names.
func LoadBooster(path string, fallbackNames []string) (*Booster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("model file %s not found: %w", path, models.ErrModelUnavailable)
		}
		return nil, tracer.Mask(err)
	}

	b, err := ParseBooster(raw, fallbackNames)
	if err != nil {
		return nil, err
	}
	b.version = filepath.Base(path) + " " + b.version
	return b, nil
}

func ParseBooster(raw []byte, fallbackNames []string) (*Booster, error) {
	var f boosterFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, tracer.Mask(err)
	}

	l := f.Learner
	if name := l.GradientBooster.Name; name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", name)
	}
	if obj := l.Objective.Name; !identityObjectives[obj] {
		return nil, fmt.Errorf("unsupported objective %q", obj)
	}
	if t := l.LearnerModelParam.NumTarget; t != "" && t != "1" {
		return nil, fmt.Errorf("multi-target models are not supported (num_target=%s)", t)
	}

	names := models.Schema(l.FeatureNames)
	if len(names) == 0 {
		names = models.Schema(fallbackNames)
	}
	if err := names.Validate(); err != nil {
		return nil, fmt.Errorf("model feature names: %w", err)
	}
	if n := l.LearnerModelParam.NumFeature; n != "" {
		num, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("invalid num_feature %q: %w", n, err)
		}
		if num != len(names) {
			return nil, fmt.Errorf("model has %d features but %d names", num, len(names))
		}
	}

	baseScore, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}

	numTrees, err := usedTrees(l.Attributes, l.GradientBooster.Model.Param.NumParallelTree,
		l.GradientBooster.Model.IterationIndptr, len(l.GradientBooster.Model.Trees))
	if err != nil {
		return nil, err
	}

	trees := make([]tree, 0, numTrees)
	for i, tf := range l.GradientBooster.Model.Trees[:numTrees] {
		t, err := tf.build(len(names))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, t)
	}

	return &Booster{
		names:     names,
		baseScore: baseScore,
		trees:     trees,
		version:   versionString(f.Version),
	}, nil
}

// usedTrees is the number of leading trees a prediction sums. An early-stopped
// model records best_iteration, and the sklearn wrapper predicts with
// iterations [0, best_iteration] only.
func usedTrees(attrs map[string]string, parallel string, indptr []int, total int) (int, error) {
	best, ok := attrs["best_iteration"]
	if !ok {
		return total, nil
	}
	iter, err := strconv.Atoi(strings.TrimSpace(best))
	if err != nil || iter < 0 {
		return 0, fmt.Errorf("invalid best_iteration %q", best)
	}

	n := 0
	if iter+1 < len(indptr) {
		n = indptr[iter+1]
	} else {
		per := 1
		if parallel != "" {
			if per, err = strconv.Atoi(parallel); err != nil || per < 1 {
				return 0, fmt.Errorf("invalid num_parallel_tree %q", parallel)
			}
		}
		n = (iter + 1) * per
	}
	if n > total {
		n = total
	}
	return n, nil
}

// parseBaseScore handles both "5E-1" and the bracketed "[2.7E4]" form newer
// releases write.
func parseBaseScore(s string) (float64, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
	if s == "" {
		return 0.5, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid base_score %q: %w", s, err)
	}
	return v, nil
}

func versionString(v []int) string {
	if len(v) == 0 {
		return "xgboost"
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return "xgboost-" + strings.Join(parts, ".")
}

func (tf treeFile) build(numFeatures int) (tree, error) {
	n := len(tf.LeftChildren)
	if n == 0 {
		return tree{}, errors.New("tree has no nodes")
	}
	if len(tf.RightChildren) != n || len(tf.SplitIndices) != n || len(tf.SplitConditions) != n {
		return tree{}, errors.New("node arrays differ in length")
	}
	if len(tf.DefaultLeft) != 0 && len(tf.DefaultLeft) != n {
		return tree{}, errors.New("default_left length differs from node count")
	}
	for _, st := range tf.SplitType {
		if st != 0 {
			return tree{}, errors.New("categorical splits are not supported")
		}
	}

	t := tree{
		left:        tf.LeftChildren,
		right:       tf.RightChildren,
		split:       tf.SplitIndices,
		cond:        make([]float32, n),
		defaultLeft: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		t.cond[i] = float32(tf.SplitConditions[i])
		if len(tf.DefaultLeft) == n {
			t.defaultLeft[i] = bool(tf.DefaultLeft[i])
		}
		if t.left[i] == -1 {
			continue
		}
		// Children always follow their parent, which also rules out cycles.
		if t.left[i] <= i || t.left[i] >= n || t.right[i] <= i || t.right[i] >= n {
			return tree{}, fmt.Errorf("node %d has invalid children", i)
		}
		if t.split[i] < 0 || t.split[i] >= numFeatures {
			return tree{}, fmt.Errorf("node %d splits on unknown feature %d", i, t.split[i])
		}
	}
	return t, nil
}

func (t tree) leaf(x []float64) float64 {
	node := 0
	for t.left[node] != -1 {
		v := x[t.split[node]]
		switch {
		case math.IsNaN(v):
			if t.defaultLeft[node] {
				node = t.left[node]
			} else {
				node = t.right[node]
			}
		case float32(v) < t.cond[node]:
			node = t.left[node]
		default:
			node = t.right[node]
		}
	}
	return float64(t.cond[node])
}

func (b *Booster) Predict(_ context.Context, row models.FeatureRecord) (float64, error) {
	if err := checkAligned(row, b.names); err != nil {
		return 0, err
	}
	x := row.Values()
	sum := b.baseScore
	for _, t := range b.trees {
		sum += t.leaf(x)
	}
	return sum, nil
}

func (b *Booster) FeatureNames() models.Schema { return b.names }

func (b *Booster) Version() string { return b.version }

func (b *Booster) NumTrees() int { return len(b.trees) }
