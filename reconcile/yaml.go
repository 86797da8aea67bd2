package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v2"
)

// fieldPaths lists the leaf paths of a YAML document, e.g.
// inputSet.pipeline.stages[0].stage.spec.requestBody.
func fieldPaths(doc string) ([]string, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, nil
	}

	var root yaml.MapSlice
	if err := yaml.Unmarshal([]byte(doc), &root); err != nil {
		return nil, fmt.Errorf("unable to parse yaml: %w", err)
	}

	var paths []string
	walk("", root, &paths)
	return paths, nil
}

func walk(prefix string, node interface{}, paths *[]string) {
	switch n := node.(type) {
	case yaml.MapSlice:
		if len(n) == 0 && prefix != "" {
			*paths = append(*paths, prefix)
		}
		for _, item := range n {
			key := fmt.Sprint(item.Key)
			if prefix != "" {
				key = prefix + "." + key
			}
			walk(key, item.Value, paths)
		}
	case []interface{}:
		if len(n) == 0 && prefix != "" {
			*paths = append(*paths, prefix)
		}
		for i, v := range n {
			walk(fmt.Sprintf("%s[%d]", prefix, i), v, paths)
		}
	default:
		*paths = append(*paths, prefix)
	}
}

// fieldChanges returns the leaf paths only present in oldDoc and those only
// present in newDoc.
func fieldChanges(oldDoc, newDoc string) (removed, added []string, err error) {
	oldPaths, err := fieldPaths(oldDoc)
	if err != nil {
		return nil, nil, err
	}
	newPaths, err := fieldPaths(newDoc)
	if err != nil {
		return nil, nil, err
	}

	return subtract(oldPaths, newPaths), subtract(newPaths, oldPaths), nil
}

func subtract(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, p := range b {
		seen[p] = struct{}{}
	}
	var out []string
	for _, p := range a {
		if _, ok := seen[p]; !ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func unifiedDiff(oldDoc, newDoc string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldDoc),
		B:        difflib.SplitLines(newDoc),
		FromFile: "stored",
		ToFile:   "reconciled",
		Context:  3,
	})
}

// stripReferences removes refs from overlayInputSet.inputSetReferences and
// keeps the order of every other key.
func stripReferences(doc string, refs []string) (string, error) {
	var root yaml.MapSlice
	if err := yaml.Unmarshal([]byte(doc), &root); err != nil {
		return "", fmt.Errorf("unable to parse overlay input set yaml: %w", err)
	}

	drop := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		drop[r] = struct{}{}
	}

	found := false
	for i, item := range root {
		if item.Key != "overlayInputSet" {
			continue
		}
		overlay, ok := item.Value.(yaml.MapSlice)
		if !ok {
			return "", fmt.Errorf("overlayInputSet is not a mapping")
		}
		for j, field := range overlay {
			if field.Key != "inputSetReferences" {
				continue
			}
			list, _ := field.Value.([]interface{})
			kept := []interface{}{}
			for _, ref := range list {
				if _, ok := drop[fmt.Sprint(ref)]; !ok {
					kept = append(kept, ref)
				}
			}
			overlay[j].Value = kept
			found = true
		}
		root[i].Value = overlay
	}
	if !found {
		return "", fmt.Errorf("overlay input set yaml has no inputSetReferences")
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
