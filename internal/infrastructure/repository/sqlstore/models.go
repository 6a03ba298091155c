package sqlstore

type settingTableModel struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

type favoriteTableModel struct {
	EventID   string `db:"event_id"`
	Sport     string `db:"sport"`
	HomeTeam  string `db:"home_team"`
	AwayTeam  string `db:"away_team"`
	League    string `db:"league"`
	AddedAtMS int64  `db:"added_at_ms"`
}

type snapshotCacheTableModel struct {
	CacheKey    string `db:"cache_key"`
	Payload     string `db:"payload"`
	WrittenAtMS int64  `db:"written_at_ms"`
}
