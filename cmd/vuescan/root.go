package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/weisyn/vuescan/configs"
	"github.com/weisyn/vuescan/internal/app"
	"github.com/weisyn/vuescan/internal/app/version"
)

// 服务地址环境变量
const serverEnv = "VUESCAN_SERVER"

const defaultServer = "http://127.0.0.1:3333"

// GlobalFlags 全局标志
type GlobalFlags struct {
	Server       string        // 服务地址
	OutputFormat string        // 输出格式
	Timeout      time.Duration // 请求超时
}

// newRootCmd 构建命令树
func newRootCmd() *cobra.Command {
	flags := &GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vuescan",
		Short: "组件渲染与内存统计服务",
		Long: `vuescan - 组件渲染耗时与堆内存统计

serve 在本地启动统计服务；其余命令通过 HTTP API 访问正在运行的服务:
  vuescan serve --config vuescan.yaml
  vuescan stats
  vuescan stats Widget
  vuescan start --interval 2s
  vuescan status`,
		SilenceUsage: true,
	}

	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&flags.Server, "server", server, "服务地址 (环境变量 "+serverEnv+")")
	rootCmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(FormatAuto), "输出格式: auto|json|table")
	rootCmd.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 10*time.Second, "请求超时")

	rootCmd.AddCommand(
		newServeCmd(),
		newStatsCmd(flags),
		newStartCmd(flags),
		newStopCmd(flags),
		newClearCmd(flags),
		newStatusCmd(flags),
		newVersionCmd(),
	)
	return rootCmd
}

// remote 为远程命令准备客户端与格式化器
func remote(cmd *cobra.Command, flags *GlobalFlags) (*APIClient, *Formatter) {
	return NewAPIClient(flags.Server, flags.Timeout), NewFormatter(Format(flags.OutputFormat), cmd.OutOrStdout())
}

func newServeCmd() *cobra.Command {
	var configPath, preset string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动统计服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []app.Option{app.WithConfigFile(configPath)}
			if preset != "" && configPath == "" {
				data, err := configs.Preset(preset)
				if err != nil {
					return err
				}
				opts = append(opts, app.WithEmbeddedConfig(data, configs.PresetExt))
			}

			application, err := app.Start(opts...)
			if err != nil {
				return err
			}
			application.Wait()
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (JSON/YAML，默认读取 VUESCAN_CONFIG)")
	cmd.Flags().StringVar(&preset, "preset", "", "使用预置配置: development|production (--config 优先)")
	return cmd
}

func newStatsCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [component]",
		Short: "查看组件统计",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, formatter := remote(cmd, flags)
			ctx := commandContext(cmd)

			if len(args) == 1 {
				st, err := client.ComponentStats(ctx, args[0])
				if err != nil {
					return fmt.Errorf("获取组件统计: %w", err)
				}
				return formatter.PrintComponent(st)
			}

			stats, err := client.Stats(ctx)
			if err != nil {
				return fmt.Errorf("获取统计: %w", err)
			}
			return formatter.PrintStats(stats)
		},
	}
}

func newStartCmd(flags *GlobalFlags) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "开始内存采样",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval < 0 {
				return fmt.Errorf("interval 不能为负数")
			}
			if interval > 0 && interval < time.Millisecond {
				return fmt.Errorf("interval 不能小于 1ms: %s", interval)
			}
			client, formatter := remote(cmd, flags)
			if err := client.StartTracking(commandContext(cmd), interval); err != nil {
				return fmt.Errorf("开始采样: %w", err)
			}
			return formatter.PrintResult("memory tracking started")
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "采样间隔，最小 1ms (默认使用服务端配置)")
	return cmd
}

func newStopCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "停止内存采样",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, formatter := remote(cmd, flags)
			if err := client.StopTracking(commandContext(cmd)); err != nil {
				return fmt.Errorf("停止采样: %w", err)
			}
			return formatter.PrintResult("memory tracking stopped")
		},
	}
}

func newClearCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "清空全部统计",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, formatter := remote(cmd, flags)
			if err := client.Clear(commandContext(cmd)); err != nil {
				return fmt.Errorf("清空统计: %w", err)
			}
			return formatter.PrintResult("stats cleared")
		},
	}
}

func newStatusCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "查看采样状态",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, formatter := remote(cmd, flags)
			st, err := client.Status(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("获取状态: %w", err)
			}
			return formatter.PrintStatus(st)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
