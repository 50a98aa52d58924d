package tld

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/config"
	"github.com/SlpAus/gluecksrad-wheel-backend/pkg/lifecycle"
)

const (
	fetchTimeout     = 10 * time.Second
	maxResponseBytes = 4 << 20
)

// LoadFromFile 从本地的tlds.json读取TLD列表并载入集合。
// 文件缺失或内容为空不是致命错误：集合保持不可用，claim路径会被整体阻断。
func LoadFromFile(s *Set, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("无法读取TLD列表文件 %s: %w", path, err)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("TLD列表文件 %s 不是合法的JSON数组: %w", path, err)
	}

	count, ok := s.Replace(list)
	if !ok {
		return fmt.Errorf("TLD列表文件 %s 清洗后为空", path)
	}
	fmt.Printf("TLD列表加载成功，共 %d 个。\n", count)
	return nil
}

// fetchFromURL 从远程地址拉取最新的TLD列表。
func fetchFromURL(ctx context.Context, client *http.Client, url string) ([]string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("远程TLD列表返回状态码 %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("远程TLD列表不是合法的JSON数组: %w", err)
	}
	return list, nil
}

// StartRefresher 启动后台刷新循环，定期从远程地址更新TLD集合。
// 拉取失败只打印告警，旧集合继续生效。
func StartRefresher(s *Set, cfg config.TldConfig, handle *lifecycle.Handle) {
	defer handle.Close()

	if cfg.RefreshURL == "" {
		fmt.Println("未配置TLD刷新地址，刷新服务不启动。")
		return
	}

	interval := time.Duration(cfg.RefreshInterval) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	client := &http.Client{Timeout: fetchTimeout}

	fmt.Printf("TLD刷新服务已启动，间隔 %v。\n", interval)
	for {
		if err := handle.Sleep(interval); err != nil {
			fmt.Println("TLD刷新服务已停止。")
			return
		}

		list, err := fetchFromURL(handle.Ctx(), client, cfg.RefreshURL)
		if err != nil {
			fmt.Printf("TLD刷新警告: 拉取失败: %v\n", err)
			continue
		}

		count, ok := s.Replace(list)
		if !ok {
			fmt.Println("TLD刷新警告: 远程列表清洗后为空，保留现有集合。")
			continue
		}
		fmt.Printf("TLD集合已刷新，共 %d 个。\n", count)
	}
}
