package bundler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"clientbuild.dev/internal/projectconfig"
	"clientbuild.dev/pkg/buildconfig"
)

const mainJSX = `
function App() {
	return <p>{SERVER_URL}</p>;
}
console.log(process.env.NODE_ENV, SERVER_URL, App);
`

// newProject writes a minimal client project and reports its root.
func newProject(c *qt.C, files map[string]string) string {
	root := c.TempDir()
	for name, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		c.Assert(os.MkdirAll(filepath.Dir(path), 0755), qt.IsNil)
		c.Assert(os.WriteFile(path, []byte(contents), 0644), qt.IsNil)
	}
	return root
}

func testOptions(root, mode string) Options {
	project := projectconfig.Default()
	project.External = []string{"react", "react/*"}
	return DefaultOptions(root, project, buildconfig.New(mode))
}

func readOutput(c *qt.C, root string) string {
	data, err := os.ReadFile(filepath.Join(root, "dist", "assets", "main.js"))
	c.Assert(err, qt.IsNil)
	return string(data)
}

func TestBuildDevelopment(t *testing.T) {
	c := qt.New(t)

	root := newProject(c, map[string]string{
		"src/main.jsx":      mainJSX,
		"index.html":        `<script type="module" src="/assets/main.js"></script>`,
		"public/robots.txt": "User-agent: *",
	})

	res, err := Build(context.Background(), testOptions(root, "development"))
	c.Assert(err, qt.IsNil)
	c.Assert(res.Outputs["dist/assets/main.js"] > 0, qt.IsTrue)
	c.Assert(res.Copied, qt.DeepEquals, []string{
		filepath.Join(root, "dist", "index.html"),
		filepath.Join(root, "dist", "robots.txt"),
	})

	out := readOutput(c, root)
	c.Assert(out, qt.Contains, `"http://localhost:5000"`)
	c.Assert(out, qt.Contains, `"development"`)
	c.Assert(out, qt.Contains, "react/jsx-dev-runtime")
	c.Assert(out, qt.Contains, "sourceMappingURL=data:")

	m, err := ReadManifest(filepath.Join(root, "dist"))
	c.Assert(err, qt.IsNil)
	c.Assert(m.Mode, qt.Equals, "development")
	c.Assert(m.ServerURL, qt.Equals, "http://localhost:5000")
	c.Assert(m.Outputs, qt.DeepEquals, res.Outputs)
}

func TestBuildProduction(t *testing.T) {
	c := qt.New(t)

	root := newProject(c, map[string]string{"src/main.jsx": mainJSX})
	res, err := Build(context.Background(), testOptions(root, "production"))
	c.Assert(err, qt.IsNil)
	c.Assert(res.Copied, qt.HasLen, 0)

	out := readOutput(c, root)
	c.Assert(out, qt.Contains, `"http://13.204.66.128:5000"`)
	c.Assert(out, qt.Contains, `"production"`)
	c.Assert(out, qt.Contains, "react/jsx-runtime")
	c.Assert(out, qt.Not(qt.Contains), "jsx-dev-runtime")
	c.Assert(out, qt.Not(qt.Contains), "sourceMappingURL")

	m, err := ReadManifest(filepath.Join(root, "dist"))
	c.Assert(err, qt.IsNil)
	c.Assert(m.ServerURL, qt.Equals, "http://13.204.66.128:5000")
}

func TestBuildUnsetModeIsDevelopment(t *testing.T) {
	c := qt.New(t)

	root := newProject(c, map[string]string{"src/main.jsx": mainJSX})
	_, err := Build(context.Background(), testOptions(root, ""))
	c.Assert(err, qt.IsNil)
	c.Assert(readOutput(c, root), qt.Contains, `"http://localhost:5000"`)
}

func TestBuildCleansOutDir(t *testing.T) {
	c := qt.New(t)

	root := newProject(c, map[string]string{
		"src/main.jsx":   mainJSX,
		"dist/stale.txt": "old",
	})
	_, err := Build(context.Background(), testOptions(root, "development"))
	c.Assert(err, qt.IsNil)

	_, err = os.Stat(filepath.Join(root, "dist", "stale.txt"))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}

func TestBuildErrors(t *testing.T) {
	c := qt.New(t)

	root := newProject(c, map[string]string{
		"src/main.jsx": `import "./missing";`,
	})
	_, err := Build(context.Background(), testOptions(root, "development"))
	c.Assert(err, qt.ErrorMatches, `(?s)build failed:\n.*Could not resolve "./missing".*`)

	var buildErr *BuildError
	c.Assert(err, qt.ErrorAs, &buildErr)
	c.Assert(buildErr.Messages, qt.HasLen, 1)
}

func TestBuildCanceled(t *testing.T) {
	c := qt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, testOptions(c.TempDir(), "development"))
	c.Assert(err, qt.ErrorIs, context.Canceled)
}

func TestCleanOutDirOutsideRoot(t *testing.T) {
	c := qt.New(t)

	for _, outdir := range []string{".", "..", "../sibling"} {
		opts := testOptions(c.TempDir(), "development")
		opts.Project.OutDir = outdir
		err := cleanOutDir(opts)
		c.Assert(err, qt.ErrorMatches, `refusing to clean output directory .+`)
	}
}

func TestContextRebuild(t *testing.T) {
	c := qt.New(t)

	root := newProject(c, map[string]string{"src/main.jsx": mainJSX})
	bctx, err := NewContext(testOptions(root, "development"))
	c.Assert(err, qt.IsNil)
	defer bctx.Dispose()

	_, err = bctx.Rebuild(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(readOutput(c, root), qt.Contains, "localhost:5000")

	err = os.WriteFile(filepath.Join(root, "src", "main.jsx"), []byte(`console.log("rebuilt", SERVER_URL);`), 0644)
	c.Assert(err, qt.IsNil)
	_, err = bctx.Rebuild(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(readOutput(c, root), qt.Contains, `"rebuilt"`)
}

func TestBuildErrorMessage(t *testing.T) {
	c := qt.New(t)

	err := &BuildError{Messages: []string{"a\n", "b\n"}}
	c.Assert(err.Error(), qt.Equals, "build failed with 2 errors:\na\nb\n")
}

func TestBuildRefusesOverlappingOutDir(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		OutDir string
		Kept   string
		Err    string
	}{
		{"public", "public/robots.txt", `refusing to clean output directory .+: outdir: "public" overlaps the public directory "public"`},
		{"src", "src/main.jsx", `refusing to clean output directory .+: outdir: "src" overlaps the directory of entry point "src/main.jsx"`},
		{"src/out", "src/out/keep.txt", `refusing to clean output directory .+: outdir: "src/out" overlaps the directory of entry point "src/main.jsx"`},
	}
	for _, test := range tests {
		c.Run(test.OutDir, func(c *qt.C) {
			root := newProject(c, map[string]string{
				"src/main.jsx":      mainJSX,
				"src/out/keep.txt":  "keep",
				"public/robots.txt": "User-agent: *",
			})
			opts := testOptions(root, "development")
			opts.Project.OutDir = test.OutDir

			_, err := Build(context.Background(), opts)
			c.Assert(err, qt.ErrorMatches, test.Err)

			_, err = os.Stat(filepath.Join(root, filepath.FromSlash(test.Kept)))
			c.Assert(err, qt.IsNil)
		})
	}
}

func TestNewContextRefusesOverlappingOutDir(t *testing.T) {
	c := qt.New(t)

	root := newProject(c, map[string]string{"src/main.jsx": mainJSX})
	opts := testOptions(root, "development")
	opts.Project.OutDir = "src"

	_, err := NewContext(opts)
	c.Assert(err, qt.ErrorMatches, `refusing to clean output directory .+`)

	_, err = os.Stat(filepath.Join(root, "src", "main.jsx"))
	c.Assert(err, qt.IsNil)
}
