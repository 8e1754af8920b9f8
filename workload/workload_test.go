package workload_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ctxswitch/workload"
)

var _ = Describe("Workload", func() {
	Describe("Params", func() {
		It("should convert byte sizes to element counts", func() {
			p := workload.FromBytes(8000, 64)
			Expect(p.BufferElements).To(Equal(1000))
			Expect(p.StrideElements).To(Equal(8))
			Expect(p.BufferBytes()).To(Equal(8000))
			Expect(p.StrideBytes()).To(Equal(64))
		})

		It("should raise a zero stride to one element", func() {
			p := workload.FromBytes(0, 0)
			Expect(p.StrideElements).To(Equal(1))
			Expect(p.Validate()).To(Succeed())
		})

		It("should reject negative sizes", func() {
			Expect(workload.FromBytes(-8, 8).Validate()).NotTo(Succeed())
			Expect(workload.FromBytes(8, -8).Validate()).NotTo(Succeed())
		})

		It("should flag strides that reach past the buffer", func() {
			Expect(workload.Params{BufferElements: 1000, StrideElements: 1000}.Degenerate()).To(BeTrue())
			Expect(workload.Params{BufferElements: 1000, StrideElements: 4000}.Degenerate()).To(BeTrue())
			Expect(workload.Params{BufferElements: 1000, StrideElements: 1}.Degenerate()).To(BeFalse())
			Expect(workload.Params{BufferElements: 0, StrideElements: 1}.Degenerate()).To(BeFalse())
		})

		It("should size both private buffers", func() {
			p := workload.Params{BufferElements: 100, StrideElements: 1}
			Expect(p.Footprint()).To(Equal(uint64(1600)))
		})
	})

	Describe("Run", func() {
		DescribeTable("should touch every element exactly once per iteration",
			func(n, stride, iterations int) {
				p := workload.Params{BufferElements: n, StrideElements: stride}
				buf := workload.NewBuffer(p)

				workload.Run(buf, p, iterations)

				for i, v := range buf {
					Expect(v).To(Equal(float64(iterations)), "element %d", i)
				}
				Expect(workload.Checksum(buf)).To(Equal(float64(n * iterations)))
			},
			Entry("sequential", 64, 1, 1),
			Entry("stride 8", 1000, 8, 3),
			Entry("stride not dividing size", 1001, 7, 2),
			Entry("stride equal to size", 1000, 1000, 1),
			Entry("stride larger than size", 10, 64, 4),
			Entry("empty buffer", 0, 1, 5),
		)

		It("should do nothing for zero iterations", func() {
			p := workload.Params{BufferElements: 16, StrideElements: 2}
			buf := workload.NewBuffer(p)
			workload.Run(buf, p, 0)
			Expect(workload.Checksum(buf)).To(BeZero())
		})

		It("should panic on a stride below one", func() {
			p := workload.Params{BufferElements: 16, StrideElements: 0}
			Expect(func() {
				workload.Run(workload.NewBuffer(p), p, 1)
			}).To(PanicWith(workload.ErrBadStride))
		})
	})

	Describe("Order", func() {
		It("should visit ascending indices for stride 1", func() {
			order := workload.Order(workload.Params{BufferElements: 6, StrideElements: 1})
			Expect(order).To(Equal([]int{0, 1, 2, 3, 4, 5}))
		})

		It("should visit phase by phase", func() {
			order := workload.Order(workload.Params{BufferElements: 7, StrideElements: 3})
			Expect(order).To(Equal([]int{0, 3, 6, 1, 4, 2, 5}))
		})

		It("should visit one element per phase when the stride covers the buffer", func() {
			order := workload.Order(workload.Params{BufferElements: 4, StrideElements: 10})
			Expect(order).To(Equal([]int{0, 1, 2, 3}))
		})

		It("should be empty for an empty buffer", func() {
			Expect(workload.Order(workload.Params{StrideElements: 1})).To(BeEmpty())
		})
	})
})
