package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"needletrack/internal/config"
	"needletrack/internal/logger"
	"needletrack/internal/state"
	"needletrack/internal/store"
	"needletrack/internal/view"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 工作站端小工具：订阅共享名册并在终端持续输出当前视图，
// 用于联测 needletrack-server 的快照推送链路。
func main() {
	var (
		useMemory = flag.Bool("memory", false, "use in-process memory adapter instead of remote server")
		team      = flag.Int("team", view.TeamAll, "filter by team number (0 = all teams)")
		sortKey   = flag.String("sort", string(view.SortByBedNumber), "sort key: bedNumber | treatmentTime | removalTime")
		search    = flag.String("search", "", "filter by medical record number or name")
	)
	flag.Parse()

	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "needletrack-station")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var adapter store.Adapter
	var redisClient *redis.Client
	if *useMemory {
		adapter = store.NewMemoryAdapter()
	} else {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		adapter = store.NewRemoteAdapter(cfg.ServerURL, redisClient, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := state.New(adapter, log)
	if err := st.Start(ctx); err != nil {
		log.Fatal("failed to start state store", zap.Error(err))
	}
	defer st.Close()

	updates, unsubscribe := st.Watch()
	defer unsubscribe()

	query := view.Query{
		Search: *search,
		Team:   *team,
		Sort:   view.SortKey(*sortKey),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return
		case <-updates:
			printRoster(st, query)
		}
	}
}

func printRoster(st *state.Store, q view.Query) {
	if st.Loading() {
		fmt.Println("載入中...")
		return
	}
	patients := view.Derive(st.Patients(), q)
	fmt.Printf("---- 患者名冊 (%d) ----\n", len(patients))
	for _, p := range patients {
		status := "目前無治療"
		if s, ok := p.CurrentSession(); ok {
			if s.Open() {
				status = fmt.Sprintf("針數 %d (未拔針)", s.TotalNeedles)
			} else {
				status = fmt.Sprintf("針數 %d, 拔針 %s", s.TotalNeedles, s.RemovalTime)
			}
		}
		fmt.Printf("%s  %s  床號 %s  %d組  %s\n",
			p.MedicalRecordNumber, p.Name, p.BedNumber, p.Team, status)
	}
}
