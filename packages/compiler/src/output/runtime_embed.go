package output

import _ "embed"

// RuntimeModuleName is the filename generated client modules import the
// shared runtime by.
const RuntimeModuleName = "__barefoot__.js"

// RuntimeJS is the shared client runtime, written once per build output
// directory alongside the per-component modules.
//
//go:embed runtime/barefoot.js
var RuntimeJS string
