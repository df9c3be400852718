package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceAPI       RequestSource = "API"
	RequestSourceWebClient RequestSource = "WEB_CLIENT"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixConnection   CachePrefix = "CONN_"
	CachePrefixCalendarList CachePrefix = "CAL_LIST_"
	CachePrefixTrashState   CachePrefix = "TRASH_"
	CachePrefixPlatformMeta CachePrefix = "PLATFORM_META_"
)
