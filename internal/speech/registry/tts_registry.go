package registry

import "github.com/wavout/wavout/internal/speech/engine"

// Samples holds backends that render PCM in memory.
var Samples = New[engine.SampleSynthesizer]()

// Files holds backends whose runners write artifacts into a directory.
var Files = New[engine.FileSynthesizer]()
