package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field       { return zap.String("user_agent", v) }

// Identidad / protocolo

func TenantID(v string) zap.Field   { return zap.String("tenant_id", v) }
func ClientID(v string) zap.Field   { return zap.String("client_id", v) }
func UserID(v string) zap.Field     { return zap.String("user_id", v) }
func SessionID(v string) zap.Field  { return zap.String("session_id", v) }
func Connection(v string) zap.Field { return zap.String("connection", v) }
func Provider(v string) zap.Field   { return zap.String("provider", v) }
func GrantType(v string) zap.Field  { return zap.String("grant_type", v) }
func KeyID(v string) zap.Field      { return zap.String("kid", v) }

// Email loguea la dirección enmascarada (f…@e….com).
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

// Sistema

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
func Count(v int) zap.Field        { return zap.Int("count", v) }

func String(k, v string) zap.Field    { return zap.String(k, v) }
func Int(k string, v int) zap.Field   { return zap.Int(k, v) }
func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }
func Any(k string, v any) zap.Field   { return zap.Any(k, v) }
