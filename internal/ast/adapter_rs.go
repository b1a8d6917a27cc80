package ast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// rustAdapter maps the Rust grammar onto the IR. Visibility comes from
// explicit pub modifiers, doc comments from preceding /// and /** siblings.
type rustAdapter struct {
	grammar *tree_sitter.Language
}

func newRustAdapter() *rustAdapter {
	return &rustAdapter{
		grammar: tree_sitter.NewLanguage(tree_sitter_rust.Language()),
	}
}

func (a *rustAdapter) Language() Language {
	return LangRust
}

func (a *rustAdapter) Grammar() *tree_sitter.Language {
	return a.grammar
}

// rsDeclarationKinds maps Rust item node kinds to IR kinds.
var rsDeclarationKinds = map[string]DeclarationKind{
	"function_item":    KindFunction,
	"struct_item":      KindStruct,
	"enum_item":        KindEnum,
	"trait_item":       KindTrait,
	"impl_item":        KindImpl,
	"type_item":        KindType,
	"const_item":       KindConstant,
	"static_item":      KindVariable,
	"mod_item":         KindModule,
	"macro_definition": KindMacro,
}

// rsBodyKinds are the node kinds that delimit an item's body; the signature
// span ends where the first of these starts.
var rsBodyKinds = []string{
	"block",
	"field_declaration_list",
	"enum_variant_list",
	"declaration_list",
}

func (a *rustAdapter) ExtractDeclarations(root *tree_sitter.Node, source []byte) []Declaration {
	var decls []Declaration

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if decl := a.extractItem(child, source); decl != nil {
			decls = append(decls, *decl)
		}
	}

	return decls
}

func (a *rustAdapter) extractItem(node *tree_sitter.Node, source []byte) *Declaration {
	kind, ok := rsDeclarationKinds[node.Kind()]
	if !ok {
		return nil
	}

	name := a.itemName(node, source)
	if name == "" {
		return nil
	}

	decl := NewDeclaration(name, kind, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	decl.DocComment = a.extractDocComment(node, source)

	if node.Kind() == "function_item" {
		decl.Parameters = a.extractParameters(node, source)
		if ret := node.ChildByFieldName("return_type"); ret != nil {
			decl.ReturnType = nodeText(ret, source)
		}
		if a.hasModifier(node, source, "async") {
			decl.Metadata["async"] = "true"
		}
		if a.hasModifier(node, source, "unsafe") {
			decl.Metadata["unsafe"] = "true"
		}
	}

	for _, bodyKind := range rsBodyKinds {
		if body := findChildByKind(node, bodyKind); body != nil {
			bodySpan := nodeSpan(body)
			decl.BodySpan = &bodySpan
			sigSpan := decl.Span
			sigSpan.End = bodySpan.Start
			sigSpan.EndLine = bodySpan.StartLine
			sigSpan.EndColumn = bodySpan.StartColumn
			decl.SignatureSpan = &sigSpan
			decl.Children = a.extractMembers(body, source)
			break
		}
	}

	return &decl
}

// itemName resolves the declared name; impl blocks are named after the
// implemented type.
func (a *rustAdapter) itemName(node *tree_sitter.Node, source []byte) string {
	if node.Kind() == "impl_item" {
		if typ := node.ChildByFieldName("type"); typ != nil {
			name := nodeText(typ, source)
			if trait := node.ChildByFieldName("trait"); trait != nil {
				name = nodeText(trait, source) + " for " + name
			}
			return name
		}
		return ""
	}
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nodeText(nameNode, source)
	}
	return ""
}

// extractMembers collects one level of fields, variants, and methods from an
// item body.
func (a *rustAdapter) extractMembers(body *tree_sitter.Node, source []byte) []Declaration {
	var members []Declaration

	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "field_declaration":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				m := NewDeclaration(nodeText(nameNode, source), KindField, nodeSpan(child))
				m.Visibility = a.ExtractVisibility(child, source)
				if typ := child.ChildByFieldName("type"); typ != nil {
					m.ReturnType = nodeText(typ, source)
				}
				m.DocComment = a.extractDocComment(child, source)
				members = append(members, m)
			}
		case "enum_variant":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				m := NewDeclaration(nodeText(nameNode, source), KindVariable, nodeSpan(child))
				m.Visibility = VisibilityPublic
				m.DocComment = a.extractDocComment(child, source)
				members = append(members, m)
			}
		case "function_item", "function_signature_item":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				m := NewDeclaration(nodeText(nameNode, source), KindMethod, nodeSpan(child))
				m.Visibility = a.ExtractVisibility(child, source)
				m.Parameters = a.extractParameters(child, source)
				if ret := child.ChildByFieldName("return_type"); ret != nil {
					m.ReturnType = nodeText(ret, source)
				}
				m.DocComment = a.extractDocComment(child, source)
				if block := findChildByKind(child, "block"); block != nil {
					span := nodeSpan(block)
					m.BodySpan = &span
				}
				members = append(members, m)
			}
		}
	}

	return members
}

// extractDocComment accumulates the run of /// and /** comments immediately
// preceding the item.
func (a *rustAdapter) extractDocComment(node *tree_sitter.Node, source []byte) *Comment {
	var lines []string
	var first, last Span

	prev := node.PrevSibling()
	for prev != nil {
		kind := prev.Kind()
		if kind != "line_comment" && kind != "block_comment" {
			break
		}
		text := nodeText(prev, source)
		var cleaned string
		switch {
		case strings.HasPrefix(text, "///"):
			cleaned = strings.TrimPrefix(text, "///")
		case strings.HasPrefix(text, "//!"):
			cleaned = strings.TrimPrefix(text, "//!")
		case strings.HasPrefix(text, "/**"):
			cleaned = strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
		default:
			// Plain comments break the doc run.
			prev = nil
			continue
		}

		lines = append([]string{strings.TrimSpace(cleaned)}, lines...)
		first = nodeSpan(prev)
		if last.End == 0 {
			last = nodeSpan(prev)
		}
		prev = prev.PrevSibling()
	}

	if len(lines) == 0 {
		return nil
	}

	span := first
	span.End = last.End
	span.EndLine = last.EndLine
	span.EndColumn = last.EndColumn

	return &Comment{
		Text: cleanDocIndent(strings.Join(lines, "\n")),
		Kind: CommentDoc,
		Span: span,
	}
}

func (a *rustAdapter) extractParameters(node *tree_sitter.Node, source []byte) []Parameter {
	paramsNode := node.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}

	var params []Parameter
	for i := uint(0); i < paramsNode.ChildCount(); i++ {
		child := paramsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "parameter":
			p := Parameter{Span: nodeSpan(child)}
			if pat := child.ChildByFieldName("pattern"); pat != nil {
				p.Name = nodeText(pat, source)
			}
			if typ := child.ChildByFieldName("type"); typ != nil {
				p.TypeAnnotation = nodeText(typ, source)
			}
			if p.Name != "" {
				params = append(params, p)
			}
		case "self_parameter":
			params = append(params, Parameter{
				Name: nodeText(child, source),
				Span: nodeSpan(child),
			})
		}
	}

	return params
}

// hasModifier checks for a keyword token among the item's direct children
// before the parameter list.
func (a *rustAdapter) hasModifier(node *tree_sitter.Node, source []byte, keyword string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == keyword {
			return true
		}
		if child.Kind() == "function_modifiers" && strings.Contains(nodeText(child, source), keyword) {
			return true
		}
	}
	return false
}

func (a *rustAdapter) ExtractImports(root *tree_sitter.Node, source []byte) []ImportLike {
	var imports []ImportLike

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "use_declaration":
			if imp := a.extractUse(child, source); imp != nil {
				imports = append(imports, *imp)
			}
		case "extern_crate_declaration":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				imports = append(imports, ImportLike{
					Source: nodeText(nameNode, source),
					Kind:   ImportModule,
					Span:   nodeSpan(child),
				})
			}
		}
	}

	return imports
}

func (a *rustAdapter) extractUse(node *tree_sitter.Node, source []byte) *ImportLike {
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return nil
	}

	imp := ImportLike{Span: nodeSpan(node)}
	a.classifyUseArgument(arg, source, &imp)

	// pub use re-exports regardless of path shape.
	if findChildByKind(node, "visibility_modifier") != nil {
		imp.Kind = ImportReExport
	}

	if imp.Source == "" && len(imp.Items) == 0 {
		return nil
	}
	return &imp
}

func (a *rustAdapter) classifyUseArgument(arg *tree_sitter.Node, source []byte, imp *ImportLike) {
	switch arg.Kind() {
	case "identifier", "crate", "self", "super", "scoped_identifier":
		imp.Source = nodeText(arg, source)
		imp.Kind = ImportModule
	case "use_as_clause":
		if path := arg.ChildByFieldName("path"); path != nil {
			imp.Source = nodeText(path, source)
		}
		if alias := arg.ChildByFieldName("alias"); alias != nil {
			imp.Alias = nodeText(alias, source)
		}
		imp.Kind = ImportModule
	case "scoped_use_list":
		if path := arg.ChildByFieldName("path"); path != nil {
			imp.Source = nodeText(path, source)
		}
		imp.Kind = ImportNamed
		if list := arg.ChildByFieldName("list"); list != nil {
			a.collectUseListItems(list, source, imp)
		}
	case "use_list":
		imp.Kind = ImportNamed
		a.collectUseListItems(arg, source, imp)
	case "use_wildcard":
		imp.Kind = ImportWildcard
		imp.Items = []string{"*"}
		// The path precedes the trailing ::*.
		if arg.ChildCount() > 0 {
			if first := arg.Child(0); first != nil && first.Kind() != "*" {
				imp.Source = nodeText(first, source)
			}
		}
	default:
		imp.Source = nodeText(arg, source)
		imp.Kind = ImportModule
	}
}

func (a *rustAdapter) collectUseListItems(list *tree_sitter.Node, source []byte, imp *ImportLike) {
	for i := uint(0); i < list.ChildCount(); i++ {
		child := list.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		switch child.Kind() {
		case "use_wildcard":
			imp.Kind = ImportWildcard
			imp.Items = append(imp.Items, "*")
		case "use_as_clause":
			item := ""
			if path := child.ChildByFieldName("path"); path != nil {
				item = nodeText(path, source)
			}
			if alias := child.ChildByFieldName("alias"); alias != nil {
				item += " as " + nodeText(alias, source)
			}
			if item != "" {
				imp.Items = append(imp.Items, item)
			}
		default:
			imp.Items = append(imp.Items, nodeText(child, source))
		}
	}
}

func (a *rustAdapter) ExtractComments(root *tree_sitter.Node, source []byte) []Comment {
	var comments []Comment
	a.visitComments(root, source, &comments)
	return comments
}

func (a *rustAdapter) visitComments(node *tree_sitter.Node, source []byte, comments *[]Comment) {
	kind := node.Kind()
	if kind == "line_comment" || kind == "block_comment" {
		text := nodeText(node, source)
		c := Comment{Span: nodeSpan(node)}
		switch {
		case strings.HasPrefix(text, "///"), strings.HasPrefix(text, "//!"):
			c.Kind = CommentDoc
			c.Text = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(text, "///"), "//!"))
		case strings.HasPrefix(text, "/**"):
			c.Kind = CommentDoc
			c.Text = cleanBlockCommentText(text)
		case strings.HasPrefix(text, "/*"):
			c.Kind = CommentBlock
			c.Text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/"))
		default:
			c.Kind = CommentLine
			c.Text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
		}
		*comments = append(*comments, c)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.visitComments(child, source, comments)
		}
	}
}

func (a *rustAdapter) ExtractBody(root *tree_sitter.Node, source []byte, decl *Declaration) *Block {
	node := findMatchingDescendant(root, decl.Span.Start, decl.Span.End)
	if node == nil {
		return nil
	}

	body := findChildByKind(node, "block")
	if body == nil {
		return nil
	}

	return a.extractBlock(body, source)
}

func (a *rustAdapter) extractBlock(node *tree_sitter.Node, source []byte) *Block {
	block := &Block{Span: nodeSpan(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.extractBlockContents(child, source, block)
		}
	}
	return block
}

// rsControlFlowKinds maps Rust expression node kinds to flow kinds.
var rsControlFlowKinds = map[string]ControlFlowKind{
	"if_expression":     FlowIf,
	"match_expression":  FlowMatch,
	"for_expression":    FlowFor,
	"while_expression":  FlowWhile,
	"loop_expression":   FlowLoop,
	"return_expression": FlowReturn,
}

func (a *rustAdapter) extractBlockContents(node *tree_sitter.Node, source []byte, block *Block) {
	kind := node.Kind()

	if flow, ok := rsControlFlowKinds[kind]; ok {
		cf := ControlFlow{Kind: flow, Span: nodeSpan(node)}
		if flow == FlowIf || flow == FlowWhile || flow == FlowMatch {
			for _, field := range []string{"condition", "value"} {
				if cond := node.ChildByFieldName(field); cond != nil {
					span := nodeSpan(cond)
					cf.ConditionSpan = &span
					break
				}
			}
		}
		block.ControlFlow = append(block.ControlFlow, cf)
	}

	switch kind {
	case "call_expression":
		if call := a.extractCall(node, source); call != nil {
			block.Calls = append(block.Calls, *call)
		}
	case "function_item":
		if decl := a.extractItem(node, source); decl != nil {
			block.NestedDeclarations = append(block.NestedDeclarations, *decl)
			return
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.extractBlockContents(child, source, block)
		}
	}
}

func (a *rustAdapter) extractCall(node *tree_sitter.Node, source []byte) *Call {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}

	count := 0
	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := uint(0); i < args.ChildCount(); i++ {
			child := args.Child(i)
			if child != nil && child.IsNamed() {
				count++
			}
		}
	}

	return &Call{
		Callee:        nodeText(fn, source),
		Span:          nodeSpan(node),
		ArgumentCount: count,
		IsMethod:      fn.Kind() == "field_expression",
	}
}

// ExtractVisibility reads the pub modifier: pub is public, pub(crate) and
// pub(in ...) are internal, pub(super) is protected, no modifier is private.
func (a *rustAdapter) ExtractVisibility(node *tree_sitter.Node, source []byte) Visibility {
	vis := findChildByKind(node, "visibility_modifier")
	if vis == nil {
		return VisibilityPrivate
	}

	text := nodeText(vis, source)
	switch {
	case text == "pub":
		return VisibilityPublic
	case strings.HasPrefix(text, "pub(crate"), strings.HasPrefix(text, "pub(in"):
		return VisibilityInternal
	case strings.HasPrefix(text, "pub(super"):
		return VisibilityProtected
	case strings.HasPrefix(text, "pub(self"):
		return VisibilityPrivate
	default:
		return VisibilityPublic
	}
}

// cleanBlockCommentText strips /** */ delimiters and leading asterisks.
func cleanBlockCommentText(text string) string {
	text = strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
