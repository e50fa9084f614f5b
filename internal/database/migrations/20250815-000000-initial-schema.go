package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250815-000000",
		Description: "Initial schema",
		Up: []string{
			// Profiles - one row per user
			`CREATE TABLE IF NOT EXISTS profiles (
				id TEXT PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				brand_name TEXT NOT NULL DEFAULT '',
				website_url TEXT,
				onboarding_completed INTEGER NOT NULL DEFAULT 0,
				is_admin INTEGER NOT NULL DEFAULT 0,
				subscription_plan TEXT NOT NULL DEFAULT 'free',
				monthly_query_limit INTEGER NOT NULL DEFAULT 100,
				queries_used_this_month INTEGER NOT NULL DEFAULT 0,
				last_query_reset_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email)`,

			// Competitors - tracked rival brands, owned by a profile
			`CREATE TABLE IF NOT EXISTS competitors (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				website_url TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_competitors_user_id ON competitors(user_id)`,

			// Prompts - tracked queries fanned out to AI platforms
			`CREATE TABLE IF NOT EXISTS prompts (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				query_text TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				update_frequency TEXT NOT NULL DEFAULT 'weekly',
				target_platform TEXT,
				target_location TEXT,
				last_triggered_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_prompts_user_id ON prompts(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_prompts_is_active ON prompts(is_active)`,

			// Executions - append-only fact table, one per prompt+platform run
			`CREATE TABLE IF NOT EXISTS executions (
				id TEXT PRIMARY KEY,
				prompt_id TEXT NOT NULL REFERENCES prompts(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL,
				model TEXT NOT NULL DEFAULT '',
				platform TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending',
				ai_response TEXT,
				sources_json TEXT,
				error_message TEXT,
				executed_at TEXT NOT NULL,
				completed_at TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_executions_prompt_id ON executions(prompt_id)`,
			`CREATE INDEX IF NOT EXISTS idx_executions_user_id ON executions(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_executions_status ON executions(status)`,

			// Brand mentions - one row per distinct brand detected per execution
			`CREATE TABLE IF NOT EXISTS brand_mentions (
				id TEXT PRIMARY KEY,
				execution_id TEXT NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
				brand_name TEXT NOT NULL,
				mention_count INTEGER NOT NULL DEFAULT 0 CHECK (mention_count >= 0),
				is_user_brand INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_brand_mentions_execution_id ON brand_mentions(execution_id)`,

			// Sentiment analysis - at most one row per execution
			`CREATE TABLE IF NOT EXISTS sentiment_analysis (
				id TEXT PRIMARY KEY,
				execution_id TEXT UNIQUE NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
				positive_percentage REAL NOT NULL DEFAULT 0,
				neutral_percentage REAL NOT NULL DEFAULT 0,
				negative_percentage REAL NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,

			// Recommendations - ordinal advice rows per execution
			`CREATE TABLE IF NOT EXISTS recommendations (
				id TEXT PRIMARY KEY,
				execution_id TEXT NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
				ordinal INTEGER NOT NULL DEFAULT 0,
				text TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_recommendations_execution_id ON recommendations(execution_id)`,

			// Aggregated metrics - derived cache, one row per (user, period)
			`CREATE TABLE IF NOT EXISTS aggregated_metrics (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				time_period TEXT NOT NULL DEFAULT 'all',
				avg_sentiment_score REAL NOT NULL DEFAULT 0,
				avg_brand_visibility REAL NOT NULL DEFAULT 0,
				share_of_voice REAL NOT NULL DEFAULT 0,
				competitive_rank INTEGER NOT NULL DEFAULT 0,
				response_quality REAL NOT NULL DEFAULT 0,
				platform_coverage INTEGER NOT NULL DEFAULT 0,
				total_executions INTEGER NOT NULL DEFAULT 0,
				total_brand_mentions INTEGER NOT NULL DEFAULT 0,
				total_competitor_mentions INTEGER NOT NULL DEFAULT 0,
				top_competitor TEXT,
				avg_positive_sentiment REAL NOT NULL DEFAULT 0,
				avg_neutral_sentiment REAL NOT NULL DEFAULT 0,
				avg_negative_sentiment REAL NOT NULL DEFAULT 0,
				updated_at TEXT NOT NULL,
				UNIQUE (user_id, time_period)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_aggregated_metrics_user_id ON aggregated_metrics(user_id)`,
		},
	})
}
