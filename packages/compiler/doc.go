// Package compiler is the barefoot component compiler: it parses JSX+TS
// component files, classifies expressions as static or reactive, assigns
// deterministic slot ids and emits marked server templates plus client
// hydration modules.
//
// Main sub-packages:
//
//   - src/jsx_parser: lexer and recursive-descent parser for the JSX+TS
//     subset, including prop-shape extraction
//   - src/analyzer: static/reactive classification, tracked getters,
//     alias resolution and the shorthand-property rewrite
//   - src/ir: backend-agnostic IR and pre-order slot assignment
//   - src/output: template emitters (Hono JSX, Go html/template), client
//     module codegen and the embedded runtime asset
//   - src/manifest: build manifest and the incremental build cache
//   - src/compiler: the public Compile entry point
//   - src/config: project-level build configuration
//   - src/util: source spans and levelled diagnostics
//
// The CLI lives in cmd/bfc; the host-side reactive runtime that executes
// hydrated components over parsed HTML lives in packages/runtime.
package compiler
