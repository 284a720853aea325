// Package builtin provides the native tools that ship with toolbelt.
//
// Each tool implements tool.NativeTool: fixed metadata (name, description),
// an action contract with typed input/output fields, and a synchronous
// Invoke. Tools hold no state across calls.
package builtin

import (
	"slices"

	"github.com/toolbelt-dev/toolbelt/tool"
)

var nativeTools = map[string]tool.NativeTool{
	WordCounterName: wordCounterTool{},
	"time_converter": timeConverterTool{},
	"file_creator":   fileCreatorTool{},
	"file_reader":    fileReaderTool{},
	"url_fetcher":    urlFetcherTool{},
	"tool_scaffold":  toolScaffoldTool{},
}

// Registrations returns all built-in native tool registrations.
func Registrations() []tool.ToolRegistration {
	names := make([]string, 0, len(nativeTools))
	for name := range nativeTools {
		names = append(names, name)
	}
	slices.Sort(names)

	regs := make([]tool.ToolRegistration, 0, len(names))
	for _, name := range names {
		regs = append(regs, tool.ToolRegistration{
			Name:     name,
			Origin:   tool.OriginNative,
			Manifest: nativeTools[name].Manifest(),
			Status:   tool.StatusReady,
			Enabled:  true,
		})
	}
	return regs
}

// Registration returns a built-in registration by name.
func Registration(name string) (tool.ToolRegistration, bool) {
	native, ok := nativeTools[name]
	if !ok {
		return tool.ToolRegistration{}, false
	}

	return tool.ToolRegistration{
		Name:     name,
		Origin:   tool.OriginNative,
		Manifest: native.Manifest(),
		Status:   tool.StatusReady,
		Enabled:  true,
	}, true
}

// Lookup returns a built-in native tool implementation by name.
func Lookup(name string) (tool.NativeTool, bool) {
	t, ok := nativeTools[name]
	return t, ok
}
