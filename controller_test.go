package rtu_test

import (
	"errors"
	"fmt"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bangzek/clock"
	. "github.com/bangzek/powerworld-rtu"
)

var (
	txOutlet = "WRITE [01 03 00 12 00 01 24 0F]"
	rxOutlet = []byte{0x01, 0x03, 0x02, 0x00, 0xB4, 0xB8, 0x33}
	txUnitOn = "WRITE [01 06 00 3F 00 01 78 06]"
	rxUnitOn = []byte{0x01, 0x06, 0x00, 0x3F, 0x00, 0x01, 0x78, 0x06}
)

var _ = Describe("Controller", func() {
	const dsn = clock.DefaultScriptNow

	Context("single send", func() {
		It("runs just fine", func() {
			cmd := NewReadHRegsCmd(1, 0x12, 1)
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{rxOutlet, nil}},
			}
			port := &MockPort{
				Opens: []OpenScript{{rwc, 0, nil}},
			}
			con := &Controller{Port: port}
			log := NewLog()
			Expect(con.Send(cmd)).To(Succeed())
			Expect(cmd.Value()).To(BeEquivalentTo(180))
			Expect(port.Calls).To(Equal([]bool{false}))
			Expect(rwc.Calls).To(Equal([]string{txOutlet, "READ", "CLOSE"}))
			Expect(log.Msgs).To(Equal([]string{
				"D:tx: 01 03 00 12 00 01 24 0F",
				"D:TX: 1<-RHR 18:1",
				"D:rx: 01 03 02 00 B4 B8 33",
				"D:RX: 1->RHR 1[180]",
			}))
			Expect(sleeps).To(BeEmpty())
		})
	})

	Context("two send", func() {
		It("keeps the gap between them", func() {
			cmd1 := NewReadHRegsCmd(1, 0x12, 1)
			cmd2 := NewWriteRegCmd(1, 0x3F, 1)
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}, {8, nil}},
				Reads: []ReadScript{
					{nil, nil},
					{rxOutlet[:3], nil},
					{rxOutlet[3:], nil},
					{rxUnitOn, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{{rwc, SERIAL_WAIT, nil}},
			}
			con := &Controller{Port: port, KeepOpen: true}
			Expect(con.Send(cmd1)).To(Succeed())
			Expect(con.Send(cmd2)).To(Succeed())
			con.Close()
			Expect(port.Calls).To(Equal([]bool{false}))
			Expect(rwc.Calls).To(Equal([]string{
				txOutlet,
				"READ",
				"READ",
				"READ",
				txUnitOn,
				"READ",
				"CLOSE",
			}))
			Expect(sleeps).To(HaveLen(3))
			Expect(sleeps[0]).To(Equal(SERIAL_WAIT))
			Expect(sleeps[1]).To(And(
				BeNumerically(">", 0),
				BeNumerically("<=", GAP)))
			Expect(sleeps[2]).To(Equal(SERIAL_WAIT))
		})

		It("uses a new connection each time", func() {
			rwc1 := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{rxOutlet, nil}},
			}
			rwc2 := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{rxOutlet, nil}},
			}
			port := &MockPort{
				Opens: []OpenScript{{rwc1, 0, nil}, {rwc2, 0, nil}},
			}
			con := &Controller{Port: port}
			Expect(con.Send(NewReadHRegsCmd(1, 0x12, 1))).To(Succeed())
			Expect(con.Send(NewReadHRegsCmd(1, 0x12, 1))).To(Succeed())
			Expect(port.Calls).To(Equal([]bool{false, false}))
			Expect(rwc1.Calls).To(Equal([]string{txOutlet, "READ", "CLOSE"}))
			Expect(rwc2.Calls).To(Equal([]string{txOutlet, "READ", "CLOSE"}))
		})
	})

	Context("error on open", func() {
		It("gives up after all attempts", func() {
			cmd := NewReadHRegsCmd(1, 0x12, 1)
			err1 := errors.New("one")
			err2 := errors.New("two")
			port := &MockPort{
				Opens: []OpenScript{{nil, 0, err1}, {nil, 0, err2}},
			}
			con := &Controller{Port: port}
			log := NewLog()
			err := con.Send(cmd)
			Expect(err).To(MatchError(err2))
			Expect(err).To(MatchError(
				"1<-RHR 18:1 failed after 2 attempt(s): open: two"))
			var fe FailedErr
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Attempts).To(Equal(ATTEMPTS))
			Expect(port.Calls).To(Equal([]bool{false, true}))
			Expect(log.Msgs).To(Equal([]string{
				"W:1<-RHR 18:1 attempt 1/2: open: one",
			}))
		})

		It("opens exactly Attempts times", func() {
			err1 := errors.New("down")
			port := &MockPort{
				Opens: []OpenScript{
					{nil, 0, err1}, {nil, 0, err1}, {nil, 0, err1},
					{nil, 0, err1}, {nil, 0, err1},
				},
			}
			con := &Controller{Port: port, Attempts: 4}
			Expect(con.Send(NewReadHRegsCmd(1, 0, 1))).To(MatchError(err1))
			Expect(port.Calls).To(HaveLen(4))
			Expect(sleeps).To(HaveLen(3))
		})

		It("retries a write that never went out", func() {
			cmd := NewWriteRegCmd(1, 0x3F, 1)
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{rxUnitOn, nil}},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{nil, 0, errors.New("refused")},
					{rwc, 0, nil},
				},
			}
			con := &Controller{Port: port}
			Expect(con.Send(cmd)).To(Succeed())
			Expect(port.Calls).To(Equal([]bool{false, true}))
			Expect(rwc.Calls).To(Equal([]string{txUnitOn, "READ", "CLOSE"}))
		})
	})

	Context("error on tx", func() {
		It("returns that err", func() {
			cmd := NewReadHRegsCmd(1, 0x12, 1)
			err1 := errors.New("one")
			rwc1 := &MockRwc{Writes: []WriteScript{{0, err1}}}
			rwc2 := &MockRwc{Writes: []WriteScript{{5, nil}}}
			port := &MockPort{
				Opens: []OpenScript{{rwc1, 0, nil}, {rwc2, 0, nil}},
			}
			con := &Controller{Port: port}
			err := con.Send(cmd)
			Expect(err).To(MatchError(io.ErrShortWrite))
			Expect(rwc1.Calls).To(Equal([]string{txOutlet, "CLOSE"}))
			Expect(rwc2.Calls).To(Equal([]string{txOutlet, "CLOSE"}))
		})
	})

	Context("error on rx", func() {
		It("retries a read after a bad crc", func() {
			bad := append([]byte(nil), rxOutlet...)
			bad[6]++
			rwc1 := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{bad, nil}},
			}
			rwc2 := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{rxOutlet, nil}},
			}
			port := &MockPort{
				Opens: []OpenScript{{rwc1, 0, nil}, {rwc2, 0, nil}},
			}
			con := &Controller{Port: port}
			log := NewLog()
			cmd := NewReadHRegsCmd(1, 0x12, 1)
			Expect(con.Send(cmd)).To(Succeed())
			Expect(cmd.Value()).To(BeEquivalentTo(180))
			Expect(log.Msgs).To(ContainElement(
				"W:1<-RHR 18:1 attempt 1/2: " +
					"invalid response: [01 03 02 00 B4 B8 34]"))
		})

		It("gives up after Attempts replies with a bad crc", func() {
			bad := append([]byte(nil), rxOutlet...)
			bad[6]++
			rwc1 := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{bad, nil}},
			}
			rwc2 := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{bad, nil}},
			}
			port := &MockPort{
				Opens: []OpenScript{{rwc1, 0, nil}, {rwc2, 0, nil}},
			}
			con := &Controller{Port: port}
			log := NewLog()
			err := con.Send(NewReadHRegsCmd(1, 0x12, 1))
			Expect(err).To(MatchError("1<-RHR 18:1 failed after 2 attempt(s): " +
				"invalid response: [01 03 02 00 B4 B8 34]"))
			var fe FailedErr
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Attempts).To(Equal(ATTEMPTS))
			var br BadRxErr
			Expect(errors.As(err, &br)).To(BeTrue())
			Expect(br).To(Equal(BadRxErr(bad)))
			Expect(port.Calls).To(Equal([]bool{false, false}))
			Expect(rwc1.Calls).To(Equal([]string{txOutlet, "READ", "CLOSE"}))
			Expect(rwc2.Calls).To(Equal([]string{txOutlet, "READ", "CLOSE"}))
			Expect(log.Msgs).To(ContainElement(
				"W:1<-RHR 18:1 attempt 1/2: " +
					"invalid response: [01 03 02 00 B4 B8 34]"))
		})

		It("stops reading a reply from another device", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{[]byte{0x02, 0x03, 0x02}, nil}},
			}
			port := &MockPort{Opens: []OpenScript{{rwc, 0, nil}}}
			con := &Controller{Port: port, Attempts: 1}
			err := con.Send(NewReadHRegsCmd(1, 0x12, 1))
			var br BadRxErr
			Expect(errors.As(err, &br)).To(BeTrue())
			Expect(br).To(Equal(BadRxErr{0x02, 0x03, 0x02}))
			Expect(rwc.Calls).To(Equal([]string{txOutlet, "READ", "CLOSE"}))
		})

		It("wraps a socket error", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{nil, io.EOF}},
			}
			port := &MockPort{Opens: []OpenScript{{rwc, 0, nil}}}
			con := &Controller{Port: port, Attempts: 1}
			err := con.Send(NewReadHRegsCmd(1, 0x12, 1))
			Expect(err).To(MatchError(io.EOF))
			var te TransportErr
			Expect(errors.As(err, &te)).To(BeTrue())
			Expect(te.Op).To(Equal("read"))
		})

		It("does not repeat an exception", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads: []ReadScript{
					{[]byte{0x01, 0x83, 0x02, 0xC0, 0xF1}, nil},
				},
			}
			port := &MockPort{Opens: []OpenScript{{rwc, 0, nil}}}
			con := &Controller{Port: port}
			err := con.Send(NewReadHRegsCmd(1, 0x12, 1))
			Expect(err).To(MatchError(ModbusErr(2)))
			Expect(err).To(MatchError(
				"1<-RHR 18:1 failed after 1 attempt(s): illegal data address"))
			Expect(port.Calls).To(HaveLen(1))
		})

		It("does not repeat a write once it went out", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{nil, io.EOF}},
			}
			port := &MockPort{Opens: []OpenScript{{rwc, 0, nil}}}
			con := &Controller{Port: port}
			err := con.Send(NewWriteRegCmd(1, 0x3F, 1))
			var na NoAckErr
			Expect(errors.As(err, &na)).To(BeTrue())
			Expect(port.Calls).To(HaveLen(1))
		})
	})

	Context("timeout", func() {
		It("returns ErrTimeout", func() {
			t := time.Date(2024, time.March, 2, 10, 11, 12, 0, time.UTC)
			mc := new(clock.Mock)
			mc.NowScripts = []time.Duration{
				0, 0, TIMEOUT, 0,
			}
			SetClock(mc)
			mc.Start(t)
			cmd := NewReadHRegsCmd(1, 0x12, 1)
			rwc := &MockRwc{
				Writes: []WriteScript{{8, nil}},
				Reads:  []ReadScript{{nil, nil}},
			}
			port := &MockPort{Opens: []OpenScript{{rwc, 0, nil}}}
			con := &Controller{Port: port, Attempts: 1}
			log := NewLog()
			Expect(con.Send(cmd)).To(MatchError(ErrTimeout))
			Expect(port.Calls).To(Equal([]bool{false}))
			Expect(rwc.Calls).To(Equal([]string{
				txOutlet,
				"READ",
				"READ",
				"CLOSE",
			}))
			mc.Stop()
			Expect(mc.Calls()).To(HaveExactElements(
				"now",
				"now",
				"now",
				"now",
			))
			Expect(mc.Times()).To(HaveExactElements(
				t.Add(dsn),
				t.Add(2*dsn),
				t.Add(2*dsn+TIMEOUT),
				t.Add(3*dsn+TIMEOUT),
			))
			Expect(log.Msgs).To(Equal([]string{
				"D:tx: 01 03 00 12 00 01 24 0F",
				"D:TX: 1<-RHR 18:1",
			}))
		})
	})
})

type MockPort struct {
	Opens []OpenScript

	Calls []bool
	i     int
}

type OpenScript struct {
	Rwc  io.ReadWriteCloser
	Wait time.Duration
	Err  error
}

func (m *MockPort) Open(
	repeat bool,
) (rwc io.ReadWriteCloser, wait time.Duration, err error) {
	if m.i < len(m.Opens) {
		rwc = m.Opens[m.i].Rwc
		wait = m.Opens[m.i].Wait
		err = m.Opens[m.i].Err
	}
	m.i++
	m.Calls = append(m.Calls, repeat)
	return
}

type MockRwc struct {
	Writes []WriteScript
	Reads  []ReadScript

	Calls []string

	iWrite int
	iRead  int
}

type WriteScript struct {
	N   int
	Err error
}

type ReadScript struct {
	Bytes []byte
	Err   error
}

func (m *MockRwc) Write(b []byte) (n int, err error) {
	if m.iWrite < len(m.Writes) {
		n = m.Writes[m.iWrite].N
		err = m.Writes[m.iWrite].Err
	}
	m.Calls = append(m.Calls, fmt.Sprintf("WRITE [% X]", b))
	m.iWrite++
	return
}

func (m *MockRwc) Read(b []byte) (n int, err error) {
	if m.iRead < len(m.Reads) {
		s := m.Reads[m.iRead]
		if len(b) < len(s.Bytes) {
			panic(fmt.Sprintf("Invalid MockRwc.ReadScript[%d].Bytes %d>%d",
				m.iRead, len(s.Bytes), len(b)))
		}
		if len(s.Bytes) > 0 {
			copy(b, s.Bytes)
			n = len(s.Bytes)
		}
		err = s.Err
	}
	m.Calls = append(m.Calls, "READ")
	m.iRead++
	return
}

func (m *MockRwc) Close() error {
	m.Calls = append(m.Calls, "CLOSE")
	return nil
}
