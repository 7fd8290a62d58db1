package serialization

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

type item struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type pair struct {
	A *point `json:"a"`
	B *point `json:"b"`
}

type treeNode struct {
	Name     string      `json:"name"`
	Children []*treeNode `json:"children"`
	Parent   *treeNode   `json:"parent"`
}

type animal interface{ Sound() string }

type dog struct {
	Name string `json:"name"`
}

func (d *dog) Sound() string { return "woof" }

type cat struct {
	Lives int `json:"lives"`
}

func (cat) Sound() string { return "meow" }

type zoo struct {
	Animals []animal `json:"animals"`
}

type box struct {
	Value any `json:"value"`
}

type account struct {
	ID   int    `json:"id" prop:"readonly"`
	Name string `json:"name" prop:"former=title"`
}

// newTestContext returns a Context with a silent logger and the animal
// types registered.
func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()

	ctx := NewContext(append([]Option{WithLogger(log.New(io.Discard))}, opts...)...)

	if err := RegisterType[dog](ctx, "Dog"); err != nil {
		t.Fatal(err)
	}

	if err := RegisterType[cat](ctx, "Cat", "Kitty"); err != nil {
		t.Fatal(err)
	}

	return ctx
}

func minified(ctx *Context) *Params {
	return &Params{Context: ctx, Minified: true}
}
