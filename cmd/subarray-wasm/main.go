//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-subarray/array"
	"github.com/cwbudde/algo-subarray/field"
	"github.com/cwbudde/algo-subarray/irsynth"
	"github.com/cwbudde/algo-subarray/preset"
)

var irBuffer []float32

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmValidate", js.FuncOf(wasmValidate))
	js.Global().Set("wasmSolve", js.FuncOf(wasmSolve))
	js.Global().Set("wasmSynthesize", js.FuncOf(wasmSynthesize))
	js.Global().Set("wasmRenderIR", js.FuncOf(wasmRenderIR))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM subarray module loaded")
	<-c
}

func encode(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return errorJSON(err)
	}
	return string(b)
}

func errorJSON(err error) any {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

func decodeConfig(args []js.Value) (*array.Config, error) {
	if len(args) < 1 {
		return preset.Decode([]byte("{}"))
	}
	return preset.Decode([]byte(args[0].String()))
}

// optionalFloat returns a pointer to args[i] when it is a number.
func optionalFloat(args []js.Value, i int) *float64 {
	if len(args) <= i || args[i].Type() != js.TypeNumber {
		return nil
	}
	v := args[i].Float()
	return &v
}

// wasmValidate(configJSON) returns the validation problems as a JSON array.
func wasmValidate(this js.Value, args []js.Value) interface{} {
	cfg, err := decodeConfig(args)
	if err != nil {
		return errorJSON(err)
	}
	problems := array.Validate(cfg)
	if problems == nil {
		problems = []string{}
	}
	return encode(problems)
}

// wasmSolve(configJSON[, panDeg]) returns the solver result as JSON.
func wasmSolve(this js.Value, args []js.Value) interface{} {
	cfg, err := decodeConfig(args)
	if err != nil {
		return errorJSON(err)
	}
	res, err := array.Solve(cfg)
	if err != nil {
		return errorJSON(err)
	}
	if pan := optionalFloat(args, 1); pan != nil {
		res.Elements = res.Panned(*pan)
	}
	return encode(res)
}

// wasmSynthesize(configJSON, freqHz, gridSize[, arcDeg, panDeg]) returns the
// SPL field as JSON.
func wasmSynthesize(this js.Value, args []js.Value) interface{} {
	cfg, err := decodeConfig(args)
	if err != nil {
		return errorJSON(err)
	}
	res, err := array.Solve(cfg)
	if err != nil {
		return errorJSON(err)
	}
	freq := cfg.CrossoverFrequencyHz
	if f := optionalFloat(args, 1); f != nil && *f > 0 {
		freq = *f
	}
	opts := field.Options{ArcAngle: optionalFloat(args, 3), PanAngle: optionalFloat(args, 4)}
	if g := optionalFloat(args, 2); g != nil {
		opts.GridSize = int(*g)
	}
	fld, err := field.Synthesize(res.Elements, cfg, freq, opts)
	if err != nil {
		return errorJSON(err)
	}
	return encode(fld)
}

// wasmRenderIR(configJSON, x, y, sampleRate) renders the array IR at (x, y)
// and returns {"ptr", "length", "sample_rate"} pointing at float32 samples in
// WASM linear memory.
func wasmRenderIR(this js.Value, args []js.Value) interface{} {
	cfg, err := decodeConfig(args)
	if err != nil {
		return errorJSON(err)
	}
	res, err := array.Solve(cfg)
	if err != nil {
		return errorJSON(err)
	}
	ic := irsynth.DefaultConfig()
	ic.CrossoverHz = cfg.CrossoverFrequencyHz
	if x := optionalFloat(args, 1); x != nil {
		ic.ListenerX = *x
	}
	if y := optionalFloat(args, 2); y != nil {
		ic.ListenerY = *y
	}
	if sr := optionalFloat(args, 3); sr != nil {
		ic.SampleRate = int(*sr)
	}
	resp, err := irsynth.Generate(field.Sources(res.Elements, cfg, field.Options{}), ic)
	if err != nil {
		return errorJSON(err)
	}
	if len(resp.Samples) == 0 {
		return encode(map[string]int{"ptr": 0, "length": 0, "sample_rate": resp.SampleRate})
	}

	irBuffer = make([]float32, len(resp.Samples))
	for i, v := range resp.Samples {
		irBuffer[i] = float32(v)
	}
	ptr := uintptr(unsafe.Pointer(&irBuffer[0]))
	return encode(map[string]any{"ptr": ptr, "length": len(irBuffer), "sample_rate": resp.SampleRate})
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
