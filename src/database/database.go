package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/termtrack/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if _, err := DB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logger.L.Warn("failed to enable foreign keys", "error", err)
	}

	migrateDocumentsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS investors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		investor_type TEXT,
		commitment_amount REAL,
		currency TEXT DEFAULT 'USD',
		fund TEXT,
		relationship_notes TEXT,
		internal_notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS funds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		vehicle_type TEXT,
		vintage_year INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		investor_id INTEGER NOT NULL,
		fund_id INTEGER,
		title TEXT NOT NULL,
		doc_type TEXT,
		status TEXT DEFAULT 'Active',
		effective_date TEXT,
		supersedes_id INTEGER,
		priority INTEGER DEFAULT 0,
		file_name TEXT,
		file_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(investor_id) REFERENCES investors(id),
		FOREIGN KEY(fund_id) REFERENCES funds(id),
		FOREIGN KEY(supersedes_id) REFERENCES documents(id)
	);

	CREATE TABLE IF NOT EXISTS clauses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		clause_type TEXT NOT NULL,
		clause_text TEXT,
		rate REAL,
		discount REAL,
		threshold TEXT,
		threshold_amount REAL,
		section_ref TEXT,
		page_number INTEGER,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(document_id) REFERENCES documents(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateDocumentsTable backfills columns added after the first release
// (fund_id, supersedes_id, file_path) on databases created before them.
func migrateDocumentsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='documents'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return // table will be created with the full schema
		}
		logError("Error checking for 'documents' table", err)
		return
	}

	rows, err := DB.Query("PRAGMA table_info(documents)")
	if err != nil {
		logError("Error querying table schema for 'documents'", err)
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			logError("Error scanning column info for 'documents'", err)
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		logError("Error iterating over column info for 'documents'", err)
		return
	}

	addColumn := func(name, ddl string) {
		if columnExists[name] {
			return
		}
		if _, err := DB.Exec("ALTER TABLE documents ADD COLUMN " + ddl); err != nil {
			logError("Error adding '"+name+"' column to 'documents' table", err)
		} else if logger.L != nil {
			logger.L.Info("Added column to 'documents' table", "column", name)
		}
	}

	addColumn("fund_id", "fund_id INTEGER REFERENCES funds(id)")
	addColumn("supersedes_id", "supersedes_id INTEGER REFERENCES documents(id)")
	addColumn("priority", "priority INTEGER DEFAULT 0")
	addColumn("file_path", "file_path TEXT")
}

func logError(msg string, err error) {
	if logger.L != nil {
		logger.L.Error(msg, "error", err)
	} else {
		stdlog.Printf("%s: %v", msg, err)
	}
}
