package cache

import (
	"context"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"go.uber.org/zap"
	"max.ks1230/advisor-bot/internal/logger"
	"max.ks1230/advisor-bot/internal/model/plan"
)

var defaultBase = 10

// MemcacheClient keeps the latest completed plan per session where the
// dashboard can fetch it without touching the bot process.
type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func formatKey(sessionID int64) string {
	return "plan:" + strconv.FormatInt(sessionID, defaultBase)
}

func (mc *MemcacheClient) ArchivePlan(_ context.Context, export plan.Export) error {
	logger.Info("archive plan", zap.Int64("sessionID", export.SessionID))
	raw, err := export.Marshal()
	if err != nil {
		return err
	}
	return mc.client.Set(&memcache.Item{
		Key:   formatKey(export.SessionID),
		Value: raw,
	})
}

func (mc *MemcacheClient) GetPlan(sessionID int64) (plan.Export, error) {
	logger.Info("get plan from archive", zap.Int64("sessionID", sessionID))
	item, err := mc.client.Get(formatKey(sessionID))
	if err != nil {
		return plan.Export{}, err
	}
	return plan.Unmarshal(item.Value)
}
