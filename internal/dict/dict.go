// Package dict 是保存在 SQLite 中的用户词典。
package dict

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/iabetor/voicevox-capi/internal/logger"
	"github.com/iabetor/voicevox-capi/internal/text"
)

// FileName 是词典目录下的数据库文件名。
const FileName = "user_dict.db"

// Store 是用户词典。
// 词条同时缓存在内存中供最长匹配使用；数据库只在增删时访问。
type Store struct {
	db   *sql.DB
	path string
	lex  *text.MapLexicon
	log  *zap.SugaredLogger
}

// Open 打开 dir 下的用户词典，不存在则创建。dir 必须是已存在的目录。
func Open(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("词典目录不可用: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("词典路径 %s 不是目录", dir)
	}

	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开词典数据库失败: %w", err)
	}

	// 设置 WAL 模式
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
		lex:  text.NewMapLexicon(),
		log:  logger.Named("voicevox_core.dict"),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Infof("用户词典已打开: %s (%d 个词条)", path, s.lex.Len())
	return s, nil
}

// Path 返回数据库文件路径。
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS words (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			surface TEXT NOT NULL UNIQUE,
			pronunciation TEXT NOT NULL,
			accent INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("词典数据库迁移失败: %w", err)
		}
	}
	return nil
}

// load 把数据库中的词条读入内存。无法解析的词条被跳过并记录警告。
func (s *Store) load() error {
	words, err := s.Words()
	if err != nil {
		return err
	}
	for _, w := range words {
		if err := s.lex.Add(w); err != nil {
			s.log.Warnf("跳过无效词条 %q: %v", w.Surface, err)
		}
	}
	return nil
}

// AddWord 添加词条，表记相同的词条被覆盖。
func (s *Store) AddWord(w text.Word) error {
	if err := text.ValidateWord(w); err != nil {
		return fmt.Errorf("无效词条: %w", err)
	}
	_, err := s.db.Exec(`INSERT INTO words (surface, pronunciation, accent) VALUES (?, ?, ?)
		ON CONFLICT(surface) DO UPDATE SET
			pronunciation = excluded.pronunciation,
			accent = excluded.accent,
			updated_at = CURRENT_TIMESTAMP`,
		w.Surface, w.Pronunciation, w.Accent)
	if err != nil {
		return fmt.Errorf("写入词条失败: %w", err)
	}
	return s.lex.Add(w)
}

// RemoveWord 删除词条，返回词条是否存在。
func (s *Store) RemoveWord(surface string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM words WHERE surface = ?`, surface)
	if err != nil {
		return false, fmt.Errorf("删除词条失败: %w", err)
	}
	s.lex.Remove(surface)
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Words 按表记顺序返回所有词条。
func (s *Store) Words() ([]text.Word, error) {
	rows, err := s.db.Query(`SELECT surface, pronunciation, accent FROM words ORDER BY surface`)
	if err != nil {
		return nil, fmt.Errorf("查询词条失败: %w", err)
	}
	defer rows.Close()

	var words []text.Word
	for rows.Next() {
		var w text.Word
		if err := rows.Scan(&w.Surface, &w.Pronunciation, &w.Accent); err != nil {
			return nil, fmt.Errorf("读取词条失败: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Match 实现 text.Lexicon。
func (s *Store) Match(runes []rune) (text.Word, int, bool) {
	return s.lex.Match(runes)
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
