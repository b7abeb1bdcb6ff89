// Package monitoring turns a benchmark run into a small web server so a run
// can be watched and inspected from a browser while it grinds through the
// slower regions.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/FarLeftLane/PicoMemPerf/board"
	"github.com/FarLeftLane/PicoMemPerf/membench"
)

// Monitor can turn a benchmark run into a server and allows external
// observation of the run.
type Monitor struct {
	brd        *board.Board
	table      []*membench.TestConfig
	portNumber int
	url        string

	progressLock sync.Mutex
	progress     progressRsp
}

type progressRsp struct {
	Test  string `json:"test"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

type resultRsp struct {
	Test          string `json:"test"`
	Base          uint32 `json:"base"`
	Words         int    `json:"words"`
	ElapsedMicros int64  `json:"elapsed_micros"`
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterBoard registers the board under test. The monitor installs itself
// as the board's benchmark progress observer.
func (m *Monitor) RegisterBoard(b *board.Board) {
	m.brd = b
	b.OnProgress(m.noteProgress)
}

// RegisterTable registers the benchmark table to report results from.
func (m *Monitor) RegisterTable(table []*membench.TestConfig) {
	m.table = table
}

func (m *Monitor) noteProgress(name string, index, total int) {
	m.progressLock.Lock()
	defer m.progressLock.Unlock()

	m.progress = progressRsp{Test: name, Index: index, Total: total}
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()
	r.HandleFunc("/api/progress", m.listProgress)
	r.HandleFunc("/api/results", m.listResults)
	r.HandleFunc("/api/board", m.boardDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring benchmark run with %s\n", m.url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	return m.url
}

// OpenInBrowser opens the monitor page in the default browser.
func (m *Monitor) OpenInBrowser() {
	if m.url == "" {
		panic("monitoring: server not started")
	}

	err := browser.OpenURL(m.url + "/api/progress")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
	}
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	m.progressLock.Lock()
	rsp := m.progress
	m.progressLock.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) listResults(w http.ResponseWriter, _ *http.Request) {
	rsp := make([]resultRsp, 0, len(m.table))
	for _, cfg := range m.table {
		rsp = append(rsp, resultRsp{
			Test:          cfg.Name,
			Base:          cfg.Region.Base(),
			Words:         cfg.Region.Len(),
			ElapsedMicros: cfg.Result(),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) boardDetails(w http.ResponseWriter, _ *http.Request) {
	if m.brd == nil {
		http.Error(w, "no board registered", http.StatusNotFound)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.brd)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
