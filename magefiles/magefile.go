// Package main contains Mage build targets for wiki-retrieval developer tooling.
// Implements: docs/ARCHITECTURE § Developer Tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

const (
	binDir     = "bin"
	binName    = "wiki-retrieval"
	cmdPkg     = "./cmd/wiki-retrieval"
	configFile = "wiki-retrieval.yaml"
	contextDir = "output/context"
	sampleFile = "data/sample_articles.yaml"
	sampleDB   = "wikipedia.db"
)

// sourceRoots are the trees Stats reports on.
var sourceRoots = []string{"cmd", "internal", "pkg", "magefiles"}

// Init writes a starter wiki-retrieval.yaml with the default retrieval
// settings and creates the directory for saved context files. An existing
// config file is left untouched.
func Init() error {
	if err := os.MkdirAll(contextDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", contextDir, err)
	}

	if _, err := os.Stat(configFile); err == nil {
		fmt.Println("Keeping existing", configFile)
		return nil
	}

	cfg := types.Config{
		Corpus:    types.CorpusConfig{Path: sampleDB, Driver: types.DriverModernc},
		Retrieval: types.DefaultRetrievalConfig(),
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	fmt.Println("Wrote", configFile)
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Seed loads the sample articles into a local corpus database.
func Seed() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "--db", sampleDB, "corpus", "load", sampleFile)
}

// packageLines holds non-blank Go line counts for one package directory.
type packageLines struct {
	prod, test int
}

// Stats prints non-blank Go lines per package, split into production and
// test code, and the number of sample articles shipped in data/.
func Stats() error {
	counts := map[string]*packageLines{}
	for _, root := range sourceRoots {
		if err := countPackageLines(root, counts); err != nil {
			return err
		}
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	fmt.Printf("%-28s  %6s  %6s\n", "Package", "Prod", "Test")
	fmt.Println(strings.Repeat("-", 44))
	var total packageLines
	for _, dir := range dirs {
		c := counts[dir]
		fmt.Printf("%-28s  %6d  %6d\n", dir, c.prod, c.test)
		total.prod += c.prod
		total.test += c.test
	}
	fmt.Println(strings.Repeat("-", 44))
	fmt.Printf("%-28s  %6d  %6d\n", "total", total.prod, total.test)

	n, err := countSampleArticles(sampleFile)
	if err != nil {
		return err
	}
	fmt.Printf("\nSample articles (%s): %d\n", sampleFile, n)
	return nil
}

// countPackageLines adds the non-blank line counts of every .go file under
// root to counts, keyed by the file's directory.
func countPackageLines(root string, counts map[string]*packageLines) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}

		dir := filepath.Dir(path)
		c, ok := counts[dir]
		if !ok {
			c = &packageLines{}
			counts[dir] = c
		}
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		return nil
	})
}

func countSampleArticles(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	var file struct {
		Articles []types.Article `yaml:"articles"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return len(file.Articles), nil
}
