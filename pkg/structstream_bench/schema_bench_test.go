package structstream_bench

import (
	"testing"

	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// ============================================================================
// Benchmarks: Schema Generation
// ============================================================================

func BenchmarkSchemaGeneration_Order(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		if _, err := order.SchemaMap(); err != nil {
			b.Fatalf("schema generation failed: %v", err)
		}
	}
}

func BenchmarkSchemaGeneration_OrderList(b *testing.B) {
	list := shape.List(order)
	b.ReportAllocs()

	for b.Loop() {
		if _, err := list.SchemaMap(); err != nil {
			b.Fatalf("schema generation failed: %v", err)
		}
	}
}

func BenchmarkSchemaGeneration_OpenAITransform(b *testing.B) {
	schema, err := order.SchemaMap()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		shape.TransformForOpenAI(schema)
	}
}
