// 事件消费者进程
// 订阅清单/物品领域事件，当前实现为统计日志输出，
// 后续可扩展为站内通知、数据看板等下游消费
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	appinv "github.com/xiebiao/inventoryhub/internal/application/inventory"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/config"
	"github.com/xiebiao/inventoryhub/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if !cfg.MQ.Enabled {
		log.Fatal("MQ未启用(mq.enabled=false)，worker无事可做")
	}

	consumer, err := mq.NewConsumer(
		cfg.MQ.URL,
		cfg.MQ.Exchange,
		"topic",
		"inventoryhub.activity",
		[]string{"item.*", "inventory.*"},
	)
	if err != nil {
		log.Fatalf("创建消费者失败: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	err = consumer.Consume(ctx, func(body []byte) error {
		var event appinv.ItemEvent
		if err := json.Unmarshal(body, &event); err != nil {
			// 载荷损坏的消息直接丢弃，重新入队只会无限循环
			log.Printf("⚠️ 事件载荷解析失败(已丢弃): %v", err)
			return nil
		}
		log.Printf("📊 活动记录: inventory=%d item=%d actor=%d", event.InventoryID, event.ItemID, event.ActorID)
		return nil
	})
	if err != nil {
		log.Fatalf("消费异常退出: %v", err)
	}
}
