package config

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ActiveExamsKey returns the cache key for the active exam list.
func (r *CacheKeyStruct) ActiveExamsKey() string {
	return "exams:active"
}

var CacheKey = NewCacheKeyStruct()
