// Package fuzztests houses Go fuzz harnesses for the annotation pipeline
// (provider body -> normalizer -> resolver -> renderer). They guard against
// panics and broken invariants on arbitrary text and arbitrary responses.
//
// Назначение: прогонять произвольный текст и произвольные ответы провайдера
// через нормализацию, разрешение конфликтов и рендер.
//
// Не делает: сетевых запросов, записи файлов, выполнения CLI.
//
// Зависимости: internal/source, internal/diag, internal/fix, internal/diagfmt,
// internal/provider, internal/testkit.

package fuzztests
