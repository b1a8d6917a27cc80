package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

func TestRustSimpleFunction(t *testing.T) {
	src := "/// Adds two numbers.\n" +
		"pub fn add(a: i64, b: i64) -> i64 {\n" +
		"    a + b\n" +
		"}\n"

	file := parseAs(t, src, LangRust)
	fn := requireDecl(t, file.Declarations, "add")

	assert.Equal(t, KindFunction, fn.Kind)
	assert.Equal(t, VisibilityPublic, fn.Visibility)
	assert.Equal(t, "i64", fn.ReturnType)

	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, "a", fn.Parameters[0].Name)
	assert.Equal(t, "i64", fn.Parameters[0].TypeAnnotation)

	require.NotNil(t, fn.DocComment)
	assert.Equal(t, "Adds two numbers.", fn.DocComment.Text)

	assertSpanText(t, src, fn, "pub fn add(a: i64, b: i64) -> i64 {\n    a + b\n}")
	assertContainment(t, fn)
}

func TestRustStructWithFields(t *testing.T) {
	src := `pub struct Config {
    /// Listen address.
    pub addr: String,
    retries: u32,
}
`

	file := parseAs(t, src, LangRust)
	st := requireDecl(t, file.Declarations, "Config")
	assert.Equal(t, KindStruct, st.Kind)

	require.Len(t, st.Children, 2)

	addr := requireDecl(t, st.Children, "addr")
	assert.Equal(t, KindField, addr.Kind)
	assert.Equal(t, VisibilityPublic, addr.Visibility)
	assert.Equal(t, "String", addr.ReturnType)
	require.NotNil(t, addr.DocComment)
	assert.Equal(t, "Listen address.", addr.DocComment.Text)

	retries := requireDecl(t, st.Children, "retries")
	assert.Equal(t, VisibilityPrivate, retries.Visibility, "no pub means private")
}

func TestRustEnumVariants(t *testing.T) {
	src := `enum State {
    Idle,
    Running,
    Done,
}
`

	file := parseAs(t, src, LangRust)
	en := requireDecl(t, file.Declarations, "State")
	assert.Equal(t, KindEnum, en.Kind)

	require.Len(t, en.Children, 3)
	for _, v := range en.Children {
		assert.Equal(t, KindVariable, v.Kind)
		assert.Equal(t, VisibilityPublic, v.Visibility, "variants share the enum's visibility surface")
	}
}

func TestRustImplAndTrait(t *testing.T) {
	src := `trait Runner {
    fn run(&self) -> bool;
}

impl Runner for Engine {
    fn run(&self) -> bool {
        true
    }
}

impl Engine {
    fn new() -> Self {
        Engine {}
    }
}
`

	file := parseAs(t, src, LangRust)

	tr := requireDecl(t, file.Declarations, "Runner")
	assert.Equal(t, KindTrait, tr.Kind)
	require.Len(t, tr.Children, 1)
	assert.Equal(t, KindMethod, tr.Children[0].Kind)
	assert.Nil(t, tr.Children[0].BodySpan, "trait signatures have no body")

	traitImpl := requireDecl(t, file.Declarations, "Runner for Engine")
	assert.Equal(t, KindImpl, traitImpl.Kind)
	run := requireDecl(t, traitImpl.Children, "run")
	assert.NotNil(t, run.BodySpan)

	inherentImpl := requireDecl(t, file.Declarations, "Engine")
	assert.Equal(t, KindImpl, inherentImpl.Kind)
	requireDecl(t, inherentImpl.Children, "new")
}

func TestRustFunctionModifiers(t *testing.T) {
	src := "async fn poll() {}\n\nunsafe fn raw() {}\n"

	file := parseAs(t, src, LangRust)
	assert.Equal(t, "true", requireDecl(t, file.Declarations, "poll").Metadata["async"])
	assert.Equal(t, "true", requireDecl(t, file.Declarations, "raw").Metadata["unsafe"])
}

// ---------------------------------------------------------------------------
// Visibility gradations
// ---------------------------------------------------------------------------

func TestRustVisibilityGradations(t *testing.T) {
	src := `pub fn open() {}
pub(crate) fn internal() {}
pub(super) fn up() {}
pub(self) fn own() {}
fn hidden() {}
`

	file := parseAs(t, src, LangRust)
	require.Len(t, file.Declarations, 5)

	assert.Equal(t, VisibilityPublic, requireDecl(t, file.Declarations, "open").Visibility)
	assert.Equal(t, VisibilityInternal, requireDecl(t, file.Declarations, "internal").Visibility)
	assert.Equal(t, VisibilityProtected, requireDecl(t, file.Declarations, "up").Visibility)
	assert.Equal(t, VisibilityPrivate, requireDecl(t, file.Declarations, "own").Visibility)
	assert.Equal(t, VisibilityPrivate, requireDecl(t, file.Declarations, "hidden").Visibility)
}

// ---------------------------------------------------------------------------
// Imports
// ---------------------------------------------------------------------------

func TestRustUseDeclarations(t *testing.T) {
	src := `use std::collections::HashMap;
use std::io::{Read, Write};
use serde::Serialize as Ser;
use std::fmt::*;
pub use crate::model::Span;
`

	file := parseAs(t, src, LangRust)
	require.Len(t, file.Imports, 5)

	assert.Equal(t, "std::collections::HashMap", file.Imports[0].Source)
	assert.Equal(t, ImportModule, file.Imports[0].Kind)

	assert.Equal(t, "std::io", file.Imports[1].Source)
	assert.Equal(t, ImportNamed, file.Imports[1].Kind)
	assert.Equal(t, []string{"Read", "Write"}, file.Imports[1].Items)

	assert.Equal(t, "serde::Serialize", file.Imports[2].Source)
	assert.Equal(t, "Ser", file.Imports[2].Alias)

	assert.Equal(t, ImportWildcard, file.Imports[3].Kind)
	assert.Equal(t, []string{"*"}, file.Imports[3].Items)

	assert.Equal(t, ImportReExport, file.Imports[4].Kind, "pub use is a re-export")
	assert.Equal(t, "crate::model::Span", file.Imports[4].Source)
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func TestRustCommentKinds(t *testing.T) {
	src := "/// doc line\n// plain line\n/* plain block */\nfn f() {}\n"

	file := parseAs(t, src, LangRust)
	require.Len(t, file.Comments, 3)
	assert.Equal(t, CommentDoc, file.Comments[0].Kind)
	assert.Equal(t, "doc line", file.Comments[0].Text)
	assert.Equal(t, CommentLine, file.Comments[1].Kind)
	assert.Equal(t, "plain line", file.Comments[1].Text)
	assert.Equal(t, CommentBlock, file.Comments[2].Kind)
	assert.Equal(t, "plain block", file.Comments[2].Text)
}

func TestRustDocCommentRunAccumulates(t *testing.T) {
	src := "/// First line.\n/// Second line.\nfn doc_target() {}\n"

	file := parseAs(t, src, LangRust)
	fn := requireDecl(t, file.Declarations, "doc_target")
	require.NotNil(t, fn.DocComment)
	assert.Equal(t, "First line.\nSecond line.", fn.DocComment.Text)
}

func TestRustPlainCommentBreaksDocRun(t *testing.T) {
	src := "/// stale doc\n// implementation note\nfn g() {}\n"

	file := parseAs(t, src, LangRust)
	fn := requireDecl(t, file.Declarations, "g")
	assert.Nil(t, fn.DocComment, "a plain comment detaches the doc run")
}

// ---------------------------------------------------------------------------
// Degenerate inputs
// ---------------------------------------------------------------------------

func TestRustEmptySource(t *testing.T) {
	file := parseAs(t, "", LangRust)
	assert.Empty(t, file.Declarations)
	assert.Empty(t, file.Imports)
	assert.Empty(t, file.UnknownRegions)
}

func TestRustBrokenSourceYieldsUnknownRegions(t *testing.T) {
	src := "fn broken( {\n"

	file := parseAs(t, src, LangRust)
	assert.NotEmpty(t, file.UnknownRegions)
}

func TestRustDeterministicAcrossParses(t *testing.T) {
	src := readFixture(t, "testdata/fixtures/sample.rs")

	reg := NewAdapterRegistry()
	first, err := reg.Parse(src, LangRust)
	require.NoError(t, err)
	second, err := reg.Parse(src, LangRust)
	require.NoError(t, err)

	assert.Equal(t, first, second, "parsing the same bytes twice yields identical results")
}
