package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/weisyn/vuescan/pkg/types"
)

// Format 输出格式
type Format string

const (
	// FormatAuto 终端输出表格，管道输出 JSON
	FormatAuto Format = "auto"
	// FormatJSON JSON格式
	FormatJSON Format = "json"
	// FormatTable 表格格式
	FormatTable Format = "table"
)

// Formatter 输出格式化器
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter 创建格式化器
//
// auto 模式下仅当 writer 是终端时使用表格。
func NewFormatter(format Format, writer io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}
	if format == FormatAuto || format == "" {
		format = FormatJSON
		if f, ok := writer.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = FormatTable
		}
	}
	return &Formatter{format: format, writer: writer}
}

// Format 返回实际使用的格式
func (f *Formatter) Format() Format {
	return f.format
}

// printJSON 打印缩进 JSON
func (f *Formatter) printJSON(data interface{}) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := fmt.Fprintln(f.writer, string(output)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// renderTable 渲染 pterm 表格
func (f *Formatter) renderTable(data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	_, err = fmt.Fprintln(f.writer, out)
	return err
}

// PrintStats 打印组件统计
func (f *Formatter) PrintStats(stats map[string]types.ComponentStats) error {
	if f.format == FormatJSON {
		return f.printJSON(stats)
	}
	if len(stats) == 0 {
		_, err := fmt.Fprintln(f.writer, "暂无组件统计")
		return err
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	data := pterm.TableData{
		{"Component", "Instances", "Renders", "Last (ms)", "Avg (ms)", "Last Heap", "Avg Heap", "Max Heap", "Snapshots"},
	}
	for _, name := range names {
		data = append(data, statsRow(stats[name]))
	}
	return f.renderTable(data)
}

// PrintComponent 打印单个组件统计
func (f *Formatter) PrintComponent(st types.ComponentStats) error {
	return f.PrintStats(map[string]types.ComponentStats{st.Component: st})
}

// PrintStatus 打印采样状态
func (f *Formatter) PrintStatus(st MemoryStatus) error {
	if f.format == FormatJSON {
		return f.printJSON(st)
	}
	data := pterm.TableData{
		{"Field", "Value"},
		{"Tracking", strconv.FormatBool(st.IsTracking)},
		{"Interval", fmt.Sprintf("%dms", st.IntervalMs)},
		{"Components", strconv.Itoa(st.Components)},
		{"Pending renders", strconv.Itoa(st.PendingRenders)},
		{"Queued settles", strconv.Itoa(st.QueuedSettles)},
		{"System memory", humanize.Bytes(st.SystemTotalBytes)},
	}
	return f.renderTable(data)
}

// PrintResult 打印控制命令的结果
func (f *Formatter) PrintResult(action string) error {
	if f.format == FormatJSON {
		return f.printJSON(map[string]interface{}{"success": true, "action": action})
	}
	_, err := fmt.Fprintf(f.writer, "✅ %s\n", action)
	return err
}

func statsRow(st types.ComponentStats) []string {
	return []string{
		st.Component,
		strconv.Itoa(st.InstanceCount),
		humanize.Comma(int64(st.RenderCount)),
		strconv.FormatFloat(st.LastRenderTime, 'f', 2, 64),
		strconv.FormatFloat(st.AverageRenderTime, 'f', 2, 64),
		humanize.Bytes(st.LastHeapUsed),
		humanize.Bytes(uint64(st.AverageHeapUsed)),
		humanize.Bytes(st.MaxHeapUsed),
		strconv.Itoa(len(st.Snapshots)),
	}
}
