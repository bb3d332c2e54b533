package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hbc-format/hbc"
)

func main() {
	var (
		bcFile      = flag.String("bc", "", "Path to compiled bytecode file")
		funcIdx     = flag.Int("func", -1, "Dump a single function by index")
		listStrings = flag.Bool("strings", false, "List the string table")
		list        = flag.Bool("list", false, "List functions and exit")
		delta       = flag.Bool("delta", false, "Expect delta form instead of execution form")
		convertTo   = flag.String("convert", "", "Write a copy converted to the other form")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *bcFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: hbcdump -bc <file.hbc> [-func N] [-strings]")
		fmt.Fprintln(os.Stderr, "       hbcdump -bc <file.hbc> -list")
		fmt.Fprintln(os.Stderr, "       hbcdump -bc <file.hbc> -convert <out.hbc>")
		fmt.Fprintln(os.Stderr, "       hbcdump -bc <file.hbc> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		hbc.SetLogger(logger)
	}

	form := hbc.FormExecution
	if *delta {
		form = hbc.FormDelta
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*bcFile, form); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*bcFile, form, *funcIdx, *listStrings, *list, *convertTo); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(bcFile string, form hbc.Form, funcIdx int, listStrings, listOnly bool, convertTo string) error {
	data, err := os.ReadFile(bcFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	f, err := hbc.PopulateFromBuffer(data, form)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if convertTo != "" {
		return convert(f, data, form, convertTo)
	}

	h := f.Header
	fmt.Printf("File: %s\n", bcFile)
	fmt.Printf("Form: %s, version %d\n", form, h.Version)
	fmt.Printf("Source hash: %x\n", h.SourceHash)
	fmt.Printf("File length: %d\n", h.FileLength)
	fmt.Printf("Functions: %d (global code at %d)\n", h.FunctionCount, h.GlobalCodeIndex)
	fmt.Printf("Strings: %d (%d identifiers, %d storage bytes)\n",
		h.StringCount, h.IdentifierCount, h.StringStorageSize)
	fmt.Printf("RegExps: %d (%d storage bytes)\n", h.RegExpCount, h.RegExpStorageSize)
	fmt.Printf("Buffers: array %d, object keys %d, object values %d\n",
		h.ArrayBufferSize, h.ObjKeyBufferSize, h.ObjValueBufferSize)
	if h.ModulesResolved() {
		fmt.Printf("CJS modules: %d (statically resolved)\n", h.ModuleCount())
	} else {
		fmt.Printf("CJS modules: %d\n", h.ModuleCount())
	}
	if h.DebugInfoOffset != 0 {
		fmt.Printf("Debug info at offset %d\n", h.DebugInfoOffset)
	}

	if funcIdx >= 0 {
		return dumpFunction(f, funcIdx)
	}

	fmt.Printf("\nFunctions:\n")
	for i := 0; i < f.FunctionHeaders.Count(); i++ {
		fh, err := f.FunctionHeader(i)
		if err != nil {
			return fmt.Errorf("function %d: %w", i, err)
		}
		fmt.Printf("  [%d] %s\n", i, formatFunction(f, i, fh))
	}

	if listOnly {
		return nil
	}

	if listStrings {
		fmt.Printf("\nStrings:\n")
		for i := 0; i < f.StringTableEntries.Count(); i++ {
			raw, err := f.StringBytes(i)
			if err != nil {
				return fmt.Errorf("string %d: %w", i, err)
			}
			e, _ := f.StringEntry(i)
			kind := ""
			if e.IsIdentifier {
				kind = " ident"
			}
			if e.IsUTF16 {
				kind += " utf16"
			}
			fmt.Printf("  [%d]%s %q\n", i, kind, raw)
		}
	}

	if h.DebugInfoOffset != 0 {
		d, err := f.DebugInfo()
		if err != nil {
			return fmt.Errorf("debug info: %w", err)
		}
		fmt.Printf("\nDebug files:\n")
		for i := 0; i < int(d.Header.FilenameCount); i++ {
			fmt.Printf("  [%d] %s\n", i, d.Filename(i))
		}
	}

	return nil
}

func dumpFunction(f *hbc.FileFields, i int) error {
	fh, err := f.FunctionHeader(i)
	if err != nil {
		return err
	}
	fmt.Printf("\nFunction %d:\n", i)
	fmt.Printf("  name: string %d\n", fh.FunctionName)
	fmt.Printf("  params: %d, frame: %d, env: %d\n", fh.ParamCount, fh.FrameSize, fh.EnvironmentSize)
	fmt.Printf("  bytecode: %d bytes at %d\n", fh.BytecodeSizeInBytes, fh.Offset)
	fmt.Printf("  flags: %s\n", formatFlags(fh.Flags))

	eh, err := f.ExceptionHandlers(i)
	if err != nil {
		return err
	}
	if eh.Count() > 0 {
		fmt.Printf("  exception handlers:\n")
		for j := 0; j < eh.Count(); j++ {
			h := eh.At(j)
			fmt.Printf("    [%d, %d) -> %d\n", h.Start, h.End, h.Target)
		}
	}
	return nil
}

func convert(f *hbc.FileFields, data []byte, from hbc.Form, out string) error {
	to := hbc.FormDelta
	if from == hbc.FormDelta {
		to = hbc.FormExecution
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	if err := hbc.ConvertForm(buf, to); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if err := os.WriteFile(out, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("Wrote %s form to %s\n", to, out)
	return nil
}

func formatFunction(f *hbc.FileFields, i int, fh hbc.FunctionHeader) string {
	name := fmt.Sprintf("string %d", fh.FunctionName)
	if raw, err := f.StringBytes(int(fh.FunctionName)); err == nil && len(raw) > 0 {
		name = string(raw)
	}
	s := fmt.Sprintf("%s: %d params, %d bytes", name, fh.ParamCount, fh.BytecodeSizeInBytes)
	if flags := formatFlags(fh.Flags); flags != "" {
		s += " [" + flags + "]"
	}
	return s
}

func formatFlags(flags hbc.FunctionHeaderFlags) string {
	var parts []string
	if flags.StrictMode() {
		parts = append(parts, "strict")
	}
	if flags.HasExceptionHandler() {
		parts = append(parts, "handlers")
	}
	if flags.HasDebugInfo() {
		parts = append(parts, "debug")
	}
	return strings.Join(parts, " ")
}
