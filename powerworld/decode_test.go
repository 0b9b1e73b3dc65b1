package powerworld_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/bangzek/powerworld-rtu/powerworld"
)

var _ = Describe("Decoder", func() {
	Context("Payload", func() {
		p := NewPayload(regBytes(map[uint16]uint16{
			0x000E: 0x0012,
			0x0012: 0x00B4,
			0x016E: 0xABCD,
		}))

		It("is upper case hex of every register", func() {
			Expect(p.Regs()).To(Equal(PayloadRegs))
			Expect(len(p)).To(Equal(PayloadRegs * 4))
			Expect(string(p[0x16E*4:])).To(Equal("ABCD"))
		})

		DescribeTable("Word",
			func(addr uint16, w uint16) {
				Expect(p.Word(addr)).To(Equal(w))
			},
			Entry("water inlet", uint16(0x000E), uint16(18)),
			Entry("water outlet", uint16(0x0012), uint16(180)),
			Entry("last", uint16(0x016E), uint16(0xABCD)),
			Entry("first", uint16(0), uint16(0)),
		)

		It("refuses a register past the end", func() {
			_, err := p.Word(PayloadRegs)
			var de DecodeErr
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Addr).To(BeEquivalentTo(PayloadRegs))
			Expect(err).To(MatchError(
				"register 0x016F beyond payload of 367 registers"))
		})

		It("refuses garbage", func() {
			_, err := Payload("00G1").Word(0)
			Expect(err).To(HaveOccurred())
			var de DecodeErr
			Expect(errors.As(err, &de)).To(BeTrue())
		})
	})

	DescribeTable("Scale",
		func(raw uint16, factor float64, v float64) {
			Expect(Scale(raw, factor)).To(Equal(v))
		},
		Entry("tenth", uint16(250), 0.10, 25.0),
		Entry("raw", uint16(250), 0.0, 250.0),
		Entry("half", uint16(37), 0.5, 18.5),
		Entry("tenth with decimal", uint16(183), 0.1, 18.3),
		Entry("hundredth to one decimal", uint16(125), 0.01, 1.2),
		Entry("hundredth", uint16(1234), 0.01, 12.3),
		Entry("hundredth below a tie", uint16(15), 0.01, 0.1),
		Entry("hundredth above a tie", uint16(45), 0.01, 0.5),
		Entry("hundredth 0.65", uint16(65), 0.01, 0.7),
		Entry("hundredth 0.85", uint16(85), 0.01, 0.8),
		Entry("hundredth 1.05", uint16(105), 0.01, 1.1),
	)

	DescribeTable("Wrap",
		func(in, out float64) {
			Expect(Wrap(in)).To(Equal(out))
		},
		Entry("negative", 65300.0, -235.0),
		Entry("below threshold", 100.0, 100.0),
		Entry("at threshold", 65280.0, 65280.0),
		Entry("just over", 65281.0, -254.0),
		Entry("max", 65535.0, 0.0),
	)

	DescribeTable("Bit",
		func(w uint16, i uint, b bool) {
			Expect(Bit(w, i)).To(Equal(b))
		},
		Entry(nil, uint16(0b10010000), uint(4), true),
		Entry(nil, uint16(0b10010000), uint(3), false),
		Entry(nil, uint16(0b10010000), uint(7), true),
		Entry(nil, uint16(0x8000), uint(15), true),
		Entry(nil, uint16(0), uint(0), false),
	)
})
