package multirow

import (
	"fmt"
	"testing"
)

type benchSpec struct {
	name  string
	rows  int
	edits int
}

var benchSpecs = []benchSpec{
	{name: "R1k_E300", rows: 1000, edits: 300},
	{name: "R10k_E3k", rows: 10000, edits: 3000},
}

func buildBenchState(rows, edits int) TrackedState {
	baseline := make([]Record, 0, rows)
	for i := 0; i < rows; i++ {
		baseline = append(baseline, R(NumID(int64(i)), map[string]any{"qty": i, "note": fmt.Sprintf("row %d", i)}))
	}
	s := NewTrackedState(baseline)
	for i := 0; i < edits; i++ {
		id := NumID(int64((i * 7) % rows))
		switch i % 10 {
		case 0:
			s = ApplyDelete(s, id)
		case 1:
			s = ApplyAdd(s, R(StrID(fmt.Sprintf("tmp-%d", i)), map[string]any{"qty": 0}))
		default:
			s = ApplyEdit(s, Change{ID: id, Name: "qty", Value: NumberValue(float64(i))})
		}
	}
	return s
}

func BenchmarkMaterialize(b *testing.B) {
	for _, spec := range benchSpecs {
		b.Run(spec.name, func(b *testing.B) {
			v := TrackedOf(buildBenchState(spec.rows, spec.edits))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = Materialize(v)
			}
		})
	}
}

func BenchmarkApplyEdit(b *testing.B) {
	for _, spec := range benchSpecs {
		b.Run(spec.name, func(b *testing.B) {
			s := buildBenchState(spec.rows, spec.edits)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = ApplyEdit(s, Change{ID: NumID(int64(i % spec.rows)), Name: "note", Value: StringValue("x")})
			}
		})
	}
}

func BenchmarkReplay(b *testing.B) {
	log := NewIntentLog()
	log.Append(Intent{Type: IntentInit, Field: "lines", Value: TrackedOf(buildBenchState(1000, 0))})
	for i := 0; i < 1000; i++ {
		log.Append(Intent{Type: IntentEdit, Field: "lines", Change: Change{ID: NumID(int64(i)), Name: "qty", Value: NumberValue(-1)}})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ReplayLatest(log)
	}
}
