package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ctxswitch/timing/cache"
	"github.com/sarchlab/ctxswitch/workload"
)

var _ = Describe("Model", func() {
	var m *cache.Model

	BeforeEach(func() {
		// Small cache for testing: 4KB, 4-way, 64B lines (16 sets)
		m = cache.NewModel(cache.Config{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     64,
			HitLatency:    1,
			MissLatency:   10,
		})
	})

	It("should miss on a cold cache", func() {
		Expect(m.Access(0x1000)).To(BeFalse())

		stats := m.Stats()
		Expect(stats.Accesses).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(0)))
	})

	It("should hit on a resident line", func() {
		m.Access(0x1000)
		Expect(m.Access(0x1000)).To(BeTrue())
		Expect(m.Access(0x1038)).To(BeTrue())
		Expect(m.Stats().Hits).To(Equal(uint64(2)))
	})

	It("should evict the least recently used way", func() {
		// Same set: addresses 1KB apart
		for i := uint64(0); i < 4; i++ {
			m.Access(i * 1024)
		}
		m.Access(0) // refresh way 0
		m.Access(4 * 1024)

		Expect(m.Stats().Evictions).To(Equal(uint64(1)))
		Expect(m.Access(0)).To(BeTrue())
		Expect(m.Access(1024)).To(BeFalse())
	})

	It("should miss after a flush", func() {
		m.Access(0x40)
		m.Flush()
		Expect(m.Access(0x40)).To(BeFalse())
	})

	It("should clear statistics on reset", func() {
		m.Access(0x40)
		m.Reset()
		Expect(m.Stats()).To(Equal(cache.Statistics{}))
		Expect(m.Access(0x40)).To(BeFalse())
	})

	It("should report a zero miss ratio when idle", func() {
		Expect(m.Stats().MissRatio()).To(BeZero())
	})
})

var _ = Describe("Predict", func() {
	l1 := cache.DefaultL1DConfig()

	It("should keep small buffers resident after the first round trip", func() {
		// 4KB per buffer, 8KB total in a 32KB cache
		params := workload.Params{BufferElements: 512, StrideElements: 1}
		pred := cache.Predict(l1, params, 10000)

		Expect(pred.FitsInCache).To(BeTrue())
		Expect(pred.Cold.Accesses).To(Equal(uint64(1024)))
		Expect(pred.Cold.Misses).To(Equal(uint64(128)))
		Expect(pred.Steady.Misses).To(BeZero())
		Expect(pred.SteadyCycles).To(Equal(1024 * l1.HitLatency))
	})

	It("should miss once per line when sequential sweeps exceed the cache", func() {
		// 64KB per buffer
		params := workload.Params{BufferElements: 8192, StrideElements: 1}
		pred := cache.Predict(l1, params, 3)

		Expect(pred.FitsInCache).To(BeFalse())
		Expect(pred.Steady.Accesses).To(Equal(uint64(16384)))
		Expect(pred.Steady.MissRatio()).To(BeNumerically("~", 1.0/8, 1e-9))
	})

	It("should miss on every access when a line-sized stride thrashes", func() {
		params := workload.Params{BufferElements: 8192, StrideElements: 8}
		pred := cache.Predict(l1, params, 3)

		Expect(pred.Steady.MissRatio()).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("should keep buffers resident in L2 that overflow L1D", func() {
		// 64KB per buffer, 128KB total in a 1MB cache
		l2 := cache.DefaultL2Config()
		params := workload.Params{BufferElements: 8192, StrideElements: 1}

		Expect(cache.Predict(l1, params, 3).FitsInCache).To(BeFalse())

		pred := cache.Predict(l2, params, 3)
		Expect(pred.FitsInCache).To(BeTrue())
		Expect(pred.Cold.Misses).To(Equal(uint64(2 * 8192 / 8)))
		Expect(pred.Steady.Misses).To(BeZero())
		Expect(pred.SteadyCycles).To(Equal(2 * 8192 * l2.HitLatency))
	})

	It("should model an empty workload as no accesses", func() {
		pred := cache.Predict(l1, workload.Params{StrideElements: 1}, 5)
		Expect(pred.Steady.Accesses).To(BeZero())
		Expect(pred.FitsInCache).To(BeTrue())
	})
})

var _ = Describe("SweepFlusher", func() {
	It("should sweep the requested size", func() {
		f := cache.NewSweepFlusher(4096)
		Expect(f.Size()).To(Equal(4096))
		Expect(f.Flush).NotTo(Panic())
	})

	It("should default to twice the last-level cache", func() {
		f := cache.NewSweepFlusher(0)
		Expect(f.Size()).To(Equal(2 * cache.DefaultLLCConfig().Size))
	})

	It("should adapt a function", func() {
		calls := 0
		var f cache.Flusher = cache.FlushFunc(func() { calls++ })
		f.Flush()
		Expect(calls).To(Equal(1))
	})
})
