// fortuneai — Four-Pillars (八字) chart computation and interpretation.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZRnown/ai-fortune-telling/api"
	"github.com/ZRnown/ai-fortune-telling/internal/bazi"
	"github.com/ZRnown/ai-fortune-telling/internal/config"
	"github.com/ZRnown/ai-fortune-telling/internal/llm"
	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
	"github.com/ZRnown/ai-fortune-telling/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fortuneai",
	Short: "fortuneai — Four-Pillars chart computation and interpretation",
	Long: `fortuneai computes Four-Pillars (八字) charts from solar birth dates:
sexagenary pillars, hidden stems with ten-god relations, nayin, spirits,
major periods (大运) and annual periods (流年), plus the inverse search
from pillars back to candidate dates. With an LLM key configured it can
also interpret the computed chart.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(baziCmd)
	rootCmd.AddCommand(dayunCmd)
	rootCmd.AddCommand(liunianCmd)
	rootCmd.AddCommand(invertCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

func newEngine() *bazi.Engine {
	return bazi.NewEngine(lunisolar.NewCalendar())
}

func parseBirthArgs(cmd *cobra.Command, args []string) (models.BirthInput, error) {
	input, err := utils.ParseBirthDateTime(strings.Join(args, " "))
	if err != nil {
		return input, err
	}
	gender, _ := cmd.Flags().GetString("gender")
	input.Gender = models.Gender(gender).Normalize()
	return input, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fortuneai %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Bazi Command ---

var baziCmd = &cobra.Command{
	Use:   "bazi [date] [time]",
	Short: "Compute a Four-Pillars chart from a solar birth date",
	Long: `Compute the full Four-Pillars chart for a solar (Gregorian) birth moment.

Examples:
  fortuneai bazi 1990-05-20 15:30
  fortuneai bazi "1990-05-20 15:30" --gender female`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseBirthArgs(cmd, args)
		if err != nil {
			return err
		}
		res, err := newEngine().ComputeBazi(input)
		if err != nil {
			return err
		}
		printChart(res)
		return nil
	},
}

func init() {
	baziCmd.Flags().String("gender", "male", "gender for period direction (male/female)")
}

// --- DaYun Command ---

var dayunCmd = &cobra.Command{
	Use:   "dayun [date] [time]",
	Short: "Project the ten-year major periods (大运)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseBirthArgs(cmd, args)
		if err != nil {
			return err
		}
		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			count = cfg.Engine.DaYunCount
		}

		e := newEngine()
		res, err := e.ComputeBazi(input)
		if err != nil {
			return err
		}

		fmt.Printf("四柱：%s %s %s %s\n\n",
			res.Pillars.Year.Ganzhi(), res.Pillars.Month.Ganzhi(),
			res.Pillars.Day.Ganzhi(), res.Pillars.Hour.Ganzhi())
		for _, it := range e.CalculateDaYun(input, res, count) {
			fmt.Printf("%s  %s%s  %d-%d  干%s 支%s  %s  纳音:%s\n",
				it.Age, it.Stem, it.Branch, it.StartYear, it.EndYear,
				it.StemTG, it.BranchTG, it.Fortune, it.Nayin)
		}
		return nil
	},
}

func init() {
	dayunCmd.Flags().String("gender", "male", "gender for period direction (male/female)")
	dayunCmd.Flags().Int("count", 0, "number of periods (default from config)")
}

// --- LiuNian Command ---

var liunianCmd = &cobra.Command{
	Use:   "liunian [date] [time]",
	Short: "Project the annual periods (流年)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseBirthArgs(cmd, args)
		if err != nil {
			return err
		}
		start, _ := cmd.Flags().GetInt("start")
		if start == 0 {
			start = time.Now().Year()
		}
		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			count = cfg.Engine.LiuNianCount
		}

		e := newEngine()
		res, err := e.ComputeBazi(input)
		if err != nil {
			return err
		}

		for _, it := range e.CalculateLiuNian(input.Year, start, count, res.DayStem()) {
			fmt.Printf("%d  %s  干%s 支%s  %s  纳音:%s  空亡:%s\n",
				it.Year, it.Ganzhi, it.StemTG, it.BranchTG, it.Fortune, it.Nayin, it.Voidness)
		}
		return nil
	},
}

func init() {
	liunianCmd.Flags().String("gender", "male", "gender for ten-god reference")
	liunianCmd.Flags().Int("start", 0, "first display year (default: current year)")
	liunianCmd.Flags().Int("count", 0, "number of years (default from config)")
}

// --- Invert Command ---

var invertCmd = &cobra.Command{
	Use:   "invert",
	Short: "Find the earliest solar date matching a partial pillar set",
	Long: `Search the supported calendar window for the earliest solar timestamp
whose four pillars satisfy the given constraints.

Examples:
  fortuneai invert --year 庚午 --month 辛巳 --day 乙酉 --hour 甲申
  fortuneai invert --day 甲子 --from 1950 --to 1960`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var query models.PillarsInput
		for _, f := range []struct {
			flag string
			spec *models.PillarSpec
		}{
			{"year", &query.Year}, {"month", &query.Month},
			{"day", &query.Day}, {"hour", &query.Hour},
		} {
			v, _ := cmd.Flags().GetString(f.flag)
			if v == "" {
				continue
			}
			runes := []rune(v)
			if len(runes) != 2 {
				return fmt.Errorf("--%s wants a stem-branch pair like 庚午, got %q", f.flag, v)
			}
			f.spec.Stem, f.spec.Branch = string(runes[0]), string(runes[1])
		}

		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")
		if from == 0 {
			from = cfg.Engine.SearchYearStart
		}
		if to == 0 {
			to = cfg.Engine.SearchYearEnd
		}

		timeout := time.Duration(cfg.Engine.SearchTimeout) * time.Second
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		found, err := newEngine().FindDateByPillars(ctx, query, models.SearchOptions{
			YearStart: from, YearEnd: to,
		})
		if err != nil {
			return err
		}
		if found == nil {
			fmt.Println("no matching date in the searched range")
			return nil
		}
		fmt.Println(found)
		return nil
	},
}

func init() {
	invertCmd.Flags().String("year", "", "year pillar constraint (e.g. 庚午)")
	invertCmd.Flags().String("month", "", "month pillar constraint")
	invertCmd.Flags().String("day", "", "day pillar constraint")
	invertCmd.Flags().String("hour", "", "hour pillar constraint")
	invertCmd.Flags().Int("from", 0, "first year to search")
	invertCmd.Flags().Int("to", 0, "last year to search")
}

// --- Chat Command ---

var chatCmd = &cobra.Command{
	Use:   "chat [date] [time]",
	Short: "Interpret a computed chart with the configured LLM",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseBirthArgs(cmd, args)
		if err != nil {
			return err
		}
		question, _ := cmd.Flags().GetString("question")

		provider, err := llm.FromConfig(cfg.LLM)
		if err != nil {
			return fmt.Errorf("no usable LLM provider; set FORTUNEAI_LLM_GEMINI_KEY or FORTUNEAI_LLM_OPENAI_KEY: %w", err)
		}

		res, err := newEngine().ComputeBazi(input)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		ch, err := provider.ChatStream(ctx, llm.InterpretMessages(res, question), &llm.ChatOptions{
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
		if err != nil {
			return err
		}
		for chunk := range ch {
			if chunk.Err != nil {
				return chunk.Err
			}
			fmt.Print(chunk.Content)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	chatCmd.Flags().String("gender", "male", "gender for period direction (male/female)")
	chatCmd.Flags().String("question", "", "question to ask about the chart")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting fortuneai API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  fortuneai — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:        %s (%s)\n", version, commit)
		fmt.Printf("  Calendar range: %d-%d\n", lunisolar.MinYear, lunisolar.MaxYear)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Provider:  %s (model: %s)\n", cfg.LLM.Primary, cfg.LLM.Model)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Search range:  %d-%d\n", cfg.Engine.SearchYearStart, cfg.Engine.SearchYearEnd)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-18s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// printChart renders a complete reading the way the web form displays it.
func printChart(res *models.BaziResult) {
	fmt.Printf("公历：%s\n", res.SolarDate)
	fmt.Printf("干支：%s\n", res.LunarDate)
	fmt.Printf("日主：%s  空亡：%s\n\n", res.DayStem(), res.Voidness)

	show := func(label string, p models.Pillar) {
		fmt.Printf("%s  %s%s", label, p.Stem, p.Branch)
		if p.StemTenGod != "" {
			fmt.Printf("  干:%s", p.StemTenGod)
		}
		if len(p.Hidden) > 0 {
			parts := make([]string, len(p.Hidden))
			for i, h := range p.Hidden {
				parts[i] = h.Char + h.TenGod
			}
			fmt.Printf("  藏:%s", strings.Join(parts, " "))
		}
		fmt.Printf("  %s/%s  纳音:%s", p.Fortune, p.SelfSit, p.Nayin)
		if len(p.Spirits) > 0 {
			fmt.Printf("  神煞:%s", strings.Join(p.Spirits, " "))
		}
		fmt.Println()
	}
	show("年柱", res.Pillars.Year)
	show("月柱", res.Pillars.Month)
	show("日柱", res.Pillars.Day)
	show("时柱", res.Pillars.Hour)

	fmt.Print("\n五行：")
	for _, s := range res.Elements {
		fmt.Printf("%s %.1f%%  ", s.Name, s.Percent)
	}
	fmt.Print("\n十神：")
	for _, s := range res.TenGods {
		fmt.Printf("%s %.1f%%  ", s.Name, s.Percent)
	}
	fmt.Println()
}
